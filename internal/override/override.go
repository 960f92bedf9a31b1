// Package override implements the priority matchers that may resolve a turn
// before the statistical classifier sees it.
//
// Matchers run in a fixed order: language mode, distress, greeting,
// translation. The first one that matches owns the turn, even when all it
// can do is ask for clarification.
package override

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nadzzz/joey/internal/classifier"
	"github.com/nadzzz/joey/internal/dialogue"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/translate"
)

// Turn is what a matcher sees and mutates.
type Turn struct {
	// Utterance is the normalised input.
	Utterance string
	State     *dialogue.State
	Result    *message.TurnResult
	Logger    *slog.Logger

	predicted  bool
	prediction classifier.Prediction
	predictErr error
}

// Predict asks p for the utterance's best intent once per turn; later
// calls return the same answer.
func (t *Turn) Predict(p Predictor) (classifier.Prediction, error) {
	if !t.predicted {
		t.prediction, t.predictErr = p.Predict(t.Utterance)
		t.predicted = true
	}
	return t.prediction, t.predictErr
}

func (t *Turn) log() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

// Matcher is one override rule. Attempt reports whether it resolved the
// turn; a matcher that returns false must leave the turn untouched.
type Matcher interface {
	Name() string
	Attempt(ctx context.Context, t *Turn) bool
}

// Chain tries matchers in order.
type Chain []Matcher

// Resolve runs the chain and returns the name of the matcher that resolved
// the turn, or false when none did.
func (c Chain) Resolve(ctx context.Context, t *Turn) (string, bool) {
	for _, m := range c {
		if m.Attempt(ctx, t) {
			t.Result.ResolvedBy = m.Name()
			t.log().Debug("override matched", "matcher", m.Name())
			return m.Name(), true
		}
	}
	return "", false
}

// Deps are the collaborators shared by the matchers.
type Deps struct {
	Responses  *response.Table
	Translator translate.Translator
}

func (d Deps) translator() translate.Translator {
	if d.Translator == nil {
		return translate.Disabled{}
	}
	return d.Translator
}

// say renders key in code, falling back to the base language, and queues
// it in the language the template is written in.
func (d Deps) say(t *Turn, key string, code lang.Code, vars response.Vars) {
	tpl := d.Responses.Render(key, code, vars)
	t.Result.Say(tpl.Text, tpl.Lang)
}

// sayIn speaks text in target, translating it from the base language. On
// failure the base text is spoken followed by an apology.
func (d Deps) sayIn(ctx context.Context, t *Turn, text string, target lang.Code) {
	if target == lang.Base {
		t.Result.Say(text, lang.Base)
		return
	}
	tr := d.translator()
	out, err := tr.Translate(ctx, text, target)
	if err != nil {
		t.log().Warn("translation failed, speaking base text",
			"backend", tr.Name(), "target", target, "error", err)
		t.Result.Say(text, lang.Base)
		d.say(t, response.TranslateApology, lang.Base, nil)
		return
	}
	t.Result.Say(out, target)
}

// trimTail drops trailing punctuation so end-anchored patterns match
// "translate hello to spanish!" the same as without the mark.
func trimTail(s string) string {
	return strings.TrimRight(s, " .!?,;:।¿¡")
}
