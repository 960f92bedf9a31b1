// Package dispatch implements the turn engine.
//
// A Dispatcher owns the dialogue state and resolves one utterance at a
// time: normalise, try the override chain, otherwise classify and answer
// the intent. The console loop (Run) and the transports (Handle) share a
// Dispatcher, and turns are serialised so they never interleave.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/joey/internal/capture"
	"github.com/nadzzz/joey/internal/classifier"
	"github.com/nadzzz/joey/internal/detect"
	"github.com/nadzzz/joey/internal/dialogue"
	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/override"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/sensor"
	"github.com/nadzzz/joey/internal/textutil"
	"github.com/nadzzz/joey/internal/tts"
)

// ErrEmptyUtterance is returned for input that normalises to nothing.
var ErrEmptyUtterance = errors.New("empty utterance")

// Classifier resolves an utterance no override matched. The prediction is
// shared with the distress matcher through the turn, so a degraded
// classifier is asked once per turn.
type Classifier interface {
	override.Predictor
	Accept(p classifier.Prediction, err error) message.Match
}

// Options wires a Dispatcher. Responses, Classifier and Chain are
// required; the rest have working defaults.
type Options struct {
	Responses  *response.Table
	Classifier Classifier
	Chain      override.Chain

	Sensors     sensor.Sensors
	Detector    detect.Detector
	Transcriber capture.Transcriber // nil rejects audio messages
	Synthesizer tts.Synthesizer     // nil disables audio responses

	// IdleDelay is the pause after an empty capture.
	IdleDelay time.Duration

	Now   func() time.Time
	NewID func() string
}

// Dispatcher is the turn engine.
type Dispatcher struct {
	responses   *response.Table
	classifier  Classifier
	chain       override.Chain
	sensors     sensor.Sensors
	detector    detect.Detector
	transcriber capture.Transcriber
	synthesizer tts.Synthesizer
	idleDelay   time.Duration
	now         func() time.Time
	newID       func() string

	mu    sync.Mutex
	state dialogue.State
}

// New creates a Dispatcher in the start state.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		responses:   opts.Responses,
		classifier:  opts.Classifier,
		chain:       opts.Chain,
		sensors:     opts.Sensors,
		detector:    opts.Detector,
		transcriber: opts.Transcriber,
		synthesizer: opts.Synthesizer,
		idleDelay:   opts.IdleDelay,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if d.sensors == nil {
		d.sensors = sensor.None{}
	}
	if d.detector == nil {
		d.detector = detect.Nop{}
	}
	if d.idleDelay <= 0 {
		d.idleDelay = 500 * time.Millisecond
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

// State returns a copy of the dialogue state.
func (d *Dispatcher) State() dialogue.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Snapshot()
}

// Welcome is the reply spoken when the loop starts.
func (d *Dispatcher) Welcome() message.Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	code := d.state.ResponseLanguage()
	if d.state.UserName != "" {
		tpl := d.responses.Render(response.ReadyNamed, code, response.Vars{"name": d.state.UserName})
		return message.Reply{Text: tpl.Text, Lang: tpl.Lang}
	}
	tpl := d.responses.Render(response.Ready, code, nil)
	return message.Reply{Text: tpl.Text, Lang: tpl.Lang}
}

// Turn resolves one utterance against the current state.
func (d *Dispatcher) Turn(ctx context.Context, utterance string) (*message.TurnResult, error) {
	u := textutil.Normalize(utterance)
	if u == "" {
		return nil, ErrEmptyUtterance
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.now()
	res := &message.TurnResult{
		ID:               d.newID(),
		Utterance:        u,
		DetectedLanguage: d.detector.Detect(u),
	}
	logger := slog.With("turn_id", res.ID)
	logger.Debug("turn started",
		"utterance", u,
		"response_language", d.state.ResponseLanguage(),
		"detected_language", res.DetectedLanguage)

	t := &override.Turn{Utterance: u, State: &d.state, Result: res, Logger: logger}
	if _, ok := d.chain.Resolve(ctx, t); !ok {
		m := d.classifier.Accept(t.Predict(d.classifier))
		res.ResolvedBy = message.ResolvedByClassifier
		res.Intent = m.Intent
		res.Confidence = m.Confidence
		res.Entities = m.Entities
		d.answer(ctx, t)
	}
	res.ActiveLanguage = d.state.ResponseLanguage()

	logger.Info("turn resolved",
		"resolved_by", res.ResolvedBy,
		"intent", res.Intent,
		"confidence", res.Confidence,
		"replies", len(res.Replies),
		"active_language", res.ActiveLanguage,
		"duration", d.now().Sub(start))
	return res, nil
}

// say renders key in the response language and queues it.
func (d *Dispatcher) say(t *override.Turn, key string, vars response.Vars) {
	tpl := d.responses.Render(key, t.State.ResponseLanguage(), vars)
	t.Result.Say(tpl.Text, tpl.Lang)
}

// unknown marks the turn as not understood.
func (d *Dispatcher) unknown(t *override.Turn) {
	t.Result.Intent = intent.Unknown
	d.say(t, response.Unknown, nil)
}
