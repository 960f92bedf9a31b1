package override

import (
	"context"
	"regexp"

	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/textutil"
)

// Transition is the requested change to the language mode.
type Transition int

const (
	TransitionSet Transition = iota
	TransitionOn
	TransitionOff
)

func (tr Transition) String() string {
	switch tr {
	case TransitionOn:
		return "on"
	case TransitionOff:
		return "off"
	default:
		return "set"
	}
}

var (
	onWords  = []string{"on", "चालू", "शुरू", "activar", "آن"}
	offWords = []string{"off", "बंद", "desactivar", "آف"}

	// Words that may precede "mode" without naming a language. They leave
	// the utterance to the classifier.
	modeNoise = map[string]bool{
		"language": true, "what": true, "which": true, "this": true, "that": true,
		"the": true, "a": true, "your": true, "my": true, "current": true, "same": true,
		"whats": true,
	}

	// Aliases that are ordinary words too. They only count before "mode".
	genericAliases = map[string]bool{"default": true, "normal": true}

	langWord   = `([\p{L}\p{M}]+)`
	stateWords = textutil.Alternation(append(append([]string{}, onWords...), offWords...))
	names      = textutil.Alternation(spokenNames())

	setLanguageRE = regexp.MustCompile(textutil.WholeWord(`(?:set|change|switch) (?:the |my |your )?language (?:to|into) ` + langWord))
	prefixRE      = regexp.MustCompile(textutil.WholeWord(`(speak in|talk in|switch to|use|stop) (` + names + `)`))
	modeRE        = regexp.MustCompile(textutil.WholeWord(langWord + ` (?:mode|modo|मोड)(?: (?:` + stateWords + `))?`))
	toggleRE      = regexp.MustCompile(textutil.WholeWord(`(` + names + `) (?:` + stateWords + `)`))
	onRE          = regexp.MustCompile(textutil.WholeWord(textutil.Alternation(onWords)))
	offRE         = regexp.MustCompile(textutil.WholeWord(textutil.Alternation(offWords)))
)

// LanguageMode switches the response language on commands like
// "hindi mode on", "speak in spanish" or "set language to french".
type LanguageMode struct {
	Deps
}

// NewLanguageMode creates the language-mode matcher.
func NewLanguageMode(deps Deps) *LanguageMode {
	return &LanguageMode{Deps: deps}
}

// Name returns the matcher identifier.
func (m *LanguageMode) Name() string { return "language_mode" }

// ModeRequest is a parsed language-mode command. Word is the language as
// spoken; Code is empty when it did not resolve.
type ModeRequest struct {
	Word       string
	Code       lang.Code
	Transition Transition
}

// ParseMode recognises a language-mode command in a normalised utterance.
func ParseMode(utterance string) (ModeRequest, bool) {
	u := trimTail(utterance)

	var (
		word string
		stop bool
	)
	switch {
	case setLanguageRE.MatchString(u):
		word = setLanguageRE.FindStringSubmatch(u)[1]
	case prefixRE.MatchString(u):
		sm := prefixRE.FindStringSubmatch(u)
		stop = sm[1] == "stop"
		word = sm[2]
	case modeWord(u) != "":
		word = modeWord(u)
	case toggleRE.MatchString(u):
		word = toggleRE.FindStringSubmatch(u)[1]
	default:
		return ModeRequest{}, false
	}

	req := ModeRequest{Word: word, Transition: TransitionSet}
	if code, ok := lang.Resolve(word); ok {
		req.Code = code
	}
	switch {
	case stop || offRE.MatchString(u):
		req.Transition = TransitionOff
	case onRE.MatchString(u):
		req.Transition = TransitionOn
	}
	return req, true
}

func spokenNames() []string {
	var out []string
	for _, a := range lang.Aliases() {
		if !genericAliases[a] {
			out = append(out, a)
		}
	}
	return out
}

func modeWord(u string) string {
	for _, sm := range modeRE.FindAllStringSubmatch(u, -1) {
		if !modeNoise[sm[1]] {
			return sm[1]
		}
	}
	return ""
}

// Attempt applies the mode transition. It always resolves the turn once a
// mode command is recognised, including when the language is unknown.
func (m *LanguageMode) Attempt(ctx context.Context, t *Turn) bool {
	req, ok := ParseMode(t.Utterance)
	if !ok {
		return false
	}

	t.Result.Intent = intent.SetLanguageMode
	t.Result.Confidence = 1
	log := t.log().With("matcher", m.Name(), "word", req.Word, "transition", req.Transition.String())

	if req.Code == "" {
		log.Info("unrecognised language mode request")
		m.say(t, response.ModeUnrecognized, lang.Base, nil)
		return true
	}
	t.Result.Entities.Language = req.Code

	code := req.Code
	vars := response.Vars{"language": lang.Name(code)}
	active := t.State.ActiveLanguage

	switch req.Transition {
	case TransitionOff:
		switch {
		case active != "" && active == code:
			t.State.ClearLanguage()
			m.say(t, response.ModeOff, lang.Base, vars)
		case active == "" && code == lang.Base:
			m.say(t, response.ModeBaseAlready, lang.Base, nil)
		default:
			m.say(t, response.ModeOffNoop, lang.Base, vars)
		}

	default:
		switch {
		case code == lang.Base && active == "":
			m.say(t, response.ModeBaseAlready, lang.Base, nil)
		case code == lang.Base:
			t.State.ClearLanguage()
			m.say(t, response.ModeSwitched, lang.Base, vars)
		case active == code:
			m.sayIn(ctx, t, m.Responses.Render(response.ModeAlready, lang.Base, vars).Text, code)
		default:
			t.State.SetLanguage(code)
			m.sayIn(ctx, t, m.Responses.Render(response.ModeSwitched, lang.Base, vars).Text, code)
		}
	}

	log.Info("language mode resolved", "code", code, "active", t.State.ActiveLanguage)
	return true
}
