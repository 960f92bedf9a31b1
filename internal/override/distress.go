package override

import (
	"context"
	"regexp"
	"time"

	"github.com/nadzzz/joey/internal/classifier"
	"github.com/nadzzz/joey/internal/emergency"
	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/textutil"
)

// DefaultDistressThreshold is the raw emergency_call confidence the
// classifier must strictly exceed to trigger the distress path on its own.
const DefaultDistressThreshold = 0.7

// DistressPhrases are the literal high-urgency phrases that trigger the
// distress path regardless of classifier confidence.
var DistressPhrases = []string{
	// English
	"i need help", "sos", "fire emergency", "medical emergency",
	// Hindi (romanised)
	"mujhe madad chahiye",
	// Spanish
	"necesito ayuda", "emergencia médica", "emergencia de incendio",
	// Urdu
	"mujhay madad chahiye", "میڈیکل ایمرجنسی", "آگ لگی ہے",
	// Bengali
	"আমার সাহায্য দরকার", "মেডিকেল ইমার্জেন্সি", "ফায়ার ইমার্জেন্সি",
}

var distressRE = compileDistress(DistressPhrases)

// compileDistress normalises the phrases the same way utterances are, so
// scripts with composition exclusions still match.
func compileDistress(phrases []string) *regexp.Regexp {
	norm := make([]string, len(phrases))
	for i, p := range phrases {
		norm[i] = textutil.Normalize(p)
	}
	return regexp.MustCompile(textutil.WholeWord(`(` + textutil.Alternation(norm) + `)`))
}

// Predictor returns the classifier's raw best guess, before any acceptance
// threshold is applied.
type Predictor interface {
	Predict(text string) (classifier.Prediction, error)
}

// Distress fires the emergency handler on a literal distress phrase or a
// confident emergency_call prediction.
type Distress struct {
	Deps
	Predictor Predictor
	Handler   emergency.Handler
	// Threshold must be strictly exceeded by an emergency_call prediction.
	Threshold float64
	Now       func() time.Time
}

// NewDistress creates the distress matcher with the default threshold.
func NewDistress(deps Deps, p Predictor, h emergency.Handler) *Distress {
	return &Distress{
		Deps:      deps,
		Predictor: p,
		Handler:   h,
		Threshold: DefaultDistressThreshold,
		Now:       time.Now,
	}
}

// Name returns the matcher identifier.
func (d *Distress) Name() string { return "distress" }

// DistressPhrase returns the literal distress phrase in utterance, if any.
func DistressPhrase(utterance string) (string, bool) {
	sm := distressRE.FindStringSubmatch(utterance)
	if sm == nil {
		return "", false
	}
	return sm[1], true
}

// Attempt checks both triggers. The classifier is consulted only when no
// literal phrase matched; if it cannot answer, only the literal trigger
// applies.
func (d *Distress) Attempt(ctx context.Context, t *Turn) bool {
	alert := emergency.Alert{
		TurnID:    t.Result.ID,
		Utterance: t.Utterance,
		Language:  t.State.ResponseLanguage(),
		UserName:  t.State.UserName,
	}

	if phrase, ok := DistressPhrase(t.Utterance); ok {
		alert.Trigger = emergency.TriggerPhrase
		alert.Phrase = phrase
		t.Result.Confidence = 1
	} else if pred, ok := d.predict(t); ok {
		alert.Trigger = emergency.TriggerClassifier
		alert.Confidence = pred.Confidence
		t.Result.Confidence = pred.Confidence
	} else {
		return false
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	alert.Time = now()

	t.Result.Intent = intent.EmergencyCall
	t.log().Warn("distress signal detected",
		"trigger", alert.Trigger, "phrase", alert.Phrase, "confidence", alert.Confidence)

	code := t.State.ResponseLanguage()
	d.say(t, response.DistressAck, code, nil)
	d.say(t, response.EmergencyCalling, code, nil)
	if d.Handler != nil {
		d.Handler.Trigger(ctx, alert)
	}
	return true
}

func (d *Distress) predict(t *Turn) (classifier.Prediction, bool) {
	if d.Predictor == nil {
		return classifier.Prediction{}, false
	}
	pred, err := t.Predict(d.Predictor)
	if err != nil {
		t.log().Debug("distress classifier check skipped", "error", err)
		return classifier.Prediction{}, false
	}
	if pred.Tag != intent.EmergencyCall || pred.Confidence <= d.Threshold {
		return classifier.Prediction{}, false
	}
	return pred, true
}
