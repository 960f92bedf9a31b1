package override

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/textutil"
)

// PlaceholderTarget is the greeting target left to the classifier's
// greet_someone intent.
const PlaceholderTarget = "someone"

var (
	greetVerbs = []string{"say hello to", "say hi to", "greet", "give my regards to", "send my regards to"}

	greetRE = regexp.MustCompile(`(?:^|[^` + textutil.WordChars + `])(?:` + textutil.Alternation(greetVerbs) +
		`) (.+?)(?: (?:in|to) ([\p{L}\p{M}]+))?$`)

	// Targets that cannot be a person's name.
	greetStop = map[string]bool{
		"a": true, "the": true, "i": true, "you": true, "me": true, "him": true, "her": true,
		"us": true, "them": true, "boss": true, "it": true, "everyone": true, "everybody": true,
		"someone": true, "somebody": true, "myself": true, "yourself": true,
	}
)

// Greeting handles "<greet-verb> <target> [in|to <language>]".
type Greeting struct {
	Deps
	// Reserved maps fixed referents ("our boss") to the name greeted. They
	// take precedence over free-form names.
	Reserved map[string]string
	// Assistant is the assistant's own name, never accepted as a target.
	Assistant string
}

// NewGreeting creates the greeting matcher.
func NewGreeting(deps Deps, reserved map[string]string, assistant string) *Greeting {
	r := make(map[string]string, len(reserved))
	for k, v := range reserved {
		r[textutil.Normalize(k)] = v
	}
	return &Greeting{Deps: deps, Reserved: r, Assistant: assistant}
}

// Name returns the matcher identifier.
func (g *Greeting) Name() string { return "greeting" }

// Attempt resolves greetings addressed to a reserved referent or a named
// person. The placeholder target is declined.
func (g *Greeting) Attempt(ctx context.Context, t *Turn) bool {
	sm := greetRE.FindStringSubmatch(trimTail(t.Utterance))
	if sm == nil {
		return false
	}
	target, langWord := strings.TrimSpace(sm[1]), sm[2]

	name, reserved := g.Reserved[target]
	if !reserved {
		if target == PlaceholderTarget {
			return false
		}
		var ok bool
		if name, ok = g.extractName(target); !ok {
			t.Result.Intent = intent.GreetSomeone
			t.log().Info("greeting target not a name", "target", target)
			g.say(t, response.GreetNameUnclear, t.State.ResponseLanguage(), nil)
			return true
		}
	}

	t.Result.Intent = intent.GreetSomeone
	t.Result.Confidence = 1
	t.Result.Entities.Name = name

	respLang := t.State.ResponseLanguage()
	vars := response.Vars{"name": name}
	if langWord == "" {
		g.say(t, response.GreetPerson, respLang, vars)
		return true
	}

	code, ok := lang.Resolve(langWord)
	if !ok {
		t.log().Info("greeting language not recognised", "language", langWord)
		g.say(t, response.GreetLanguageUnknown, respLang, response.Vars{"name": name, "language": langWord})
		g.say(t, response.GreetPerson, lang.Base, vars)
		return true
	}
	t.Result.Entities.Language = code

	greeting := g.Responses.Render(response.GreetPerson, lang.Base, vars).Text
	if code == lang.Base {
		t.Result.Say(greeting, lang.Base)
		return true
	}
	out, err := g.translator().Translate(ctx, greeting, code)
	if err != nil {
		t.log().Warn("greeting translation failed", "target", code, "error", err)
		g.say(t, response.GreetTranslateFailed, respLang, response.Vars{"name": name, "language": lang.Name(code)})
		t.Result.Say(greeting, lang.Base)
		return true
	}
	t.Result.Say(out, code)
	return true
}

// extractName takes up to four words of target, title-cased.
func (g *Greeting) extractName(target string) (string, bool) {
	words := textutil.Fields(target)
	if len(words) == 0 {
		return "", false
	}
	candidate := textutil.FirstN(words, 4)
	if utf8.RuneCountInString(candidate) <= 1 || greetStop[candidate] {
		return "", false
	}
	if _, ok := g.Reserved[candidate]; ok {
		return "", false
	}
	if g.Assistant != "" && candidate == strings.ToLower(g.Assistant) {
		return "", false
	}
	return textutil.Title(candidate), true
}
