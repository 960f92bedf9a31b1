package override

import (
	"context"
	"regexp"
	"strings"

	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/response"
)

// The payload is greedy, so "translate going to the park to french" keeps
// "going to the park" and splits on the last in/to.
var translateRE = regexp.MustCompile(`^(?:translate|how do you say|tell me to say|say)(?: (.*))? (?:in|to) ([\p{L}\p{M}]+)$`)

// Translation handles "translate <payload> to <language>" and its variants.
type Translation struct {
	Deps
}

// NewTranslation creates the translation-command matcher.
func NewTranslation(deps Deps) *Translation {
	return &Translation{Deps: deps}
}

// Name returns the matcher identifier.
func (m *Translation) Name() string { return "translation" }

// Attempt translates the payload when both it and the language resolve.
// Every failure is answered in the current response language.
func (m *Translation) Attempt(ctx context.Context, t *Turn) bool {
	u := trimTail(t.Utterance)
	// "say hello to someone" reaches here after the greeting matcher
	// declined it; it belongs to the classifier.
	if g := greetRE.FindStringSubmatch(u); g != nil && strings.TrimSpace(g[1]) == PlaceholderTarget {
		return false
	}
	sm := translateRE.FindStringSubmatch(u)
	if sm == nil {
		return false
	}
	payload, word := strings.TrimSpace(sm[1]), sm[2]

	t.Result.Intent = intent.Translate
	t.Result.Confidence = 1
	t.Result.Entities.Payload = payload
	respLang := t.State.ResponseLanguage()

	code, ok := lang.Resolve(word)
	if ok {
		t.Result.Entities.Language = code
	}

	switch {
	case payload == "":
		m.say(t, response.TranslatePrompt, respLang, nil)
	case !ok:
		t.log().Info("translation language not recognised", "language", word)
		m.say(t, response.LanguageUnknown, respLang, response.Vars{"language": word})
	default:
		tr := m.translator()
		out, err := tr.Translate(ctx, payload, code)
		if err != nil {
			t.log().Warn("translation failed", "backend", tr.Name(), "target", code, "error", err)
			m.say(t, response.TranslateFailed, respLang, response.Vars{"payload": payload, "language": lang.Name(code)})
			break
		}
		t.Result.Say(out, code)
	}
	return true
}
