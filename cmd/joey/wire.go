package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nadzzz/joey/internal/capture"
	"github.com/nadzzz/joey/internal/classifier"
	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/detect"
	"github.com/nadzzz/joey/internal/dispatch"
	"github.com/nadzzz/joey/internal/emergency"
	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/override"
	"github.com/nadzzz/joey/internal/response"
	"github.com/nadzzz/joey/internal/sensor"
	"github.com/nadzzz/joey/internal/translate"
	googletr "github.com/nadzzz/joey/internal/translate/google"
	openaitr "github.com/nadzzz/joey/internal/translate/openai"
	"github.com/nadzzz/joey/internal/tts"
	"github.com/nadzzz/joey/internal/tts/piper"
)

// app holds the assembled pipeline.
type app struct {
	classifier  *classifier.Classifier
	dispatcher  *dispatch.Dispatcher
	synthesizer tts.Synthesizer
	closers     []io.Closer
}

func newClassifier(cfg *config.Config) *classifier.Classifier {
	return classifier.New(intent.Embedded{},
		classifier.WithThreshold(cfg.Classifier.Threshold),
		classifier.WithEmergencyThreshold(cfg.Classifier.EmergencyThreshold),
	)
}

func newTranslator(cfg config.TranslateConfig) translate.Translator {
	switch cfg.Backend {
	case "google":
		return googletr.New(cfg.Google)
	case "openai":
		return openaitr.New(cfg.OpenAI)
	default:
		return translate.Disabled{}
	}
}

func newSensors(cfg config.SensorsConfig) sensor.Sensors {
	var s sensor.Sensors = sensor.None{}
	if cfg.Backend == "simulated" {
		s = sensor.NewSimulated(nil)
	}
	if cfg.IPInfo.Enabled {
		s = sensor.NewIPInfo(s, cfg.IPInfo)
	}
	return s
}

// build assembles the turn pipeline from configuration. A classifier that
// fails to fit leaves Joey running degraded: overrides still work and
// everything else answers "not understood".
func build(cfg *config.Config) (*app, error) {
	responses, err := response.Load()
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}

	a := &app{classifier: newClassifier(cfg)}
	if err := a.classifier.Build(); err != nil {
		slog.Warn("intent classifier unavailable, running degraded", "error", err)
	}

	translator := newTranslator(cfg.Translate)
	slog.Info("translation backend", "name", translator.Name())

	var detector detect.Detector = detect.Nop{}
	if cfg.Detect.Enabled {
		detector = detect.NewLingua()
	}

	alerts := emergency.Multi{emergency.Log{Number: cfg.Emergency.Number}}
	if cfg.Emergency.Webhook.URL != "" {
		wh := emergency.NewWebhook(cfg.Emergency.Webhook.URL, cfg.Emergency.Webhook.Token, cfg.Emergency.Webhook.Timeout)
		alerts = append(alerts, wh)
		a.closers = append(a.closers, wh)
	}

	deps := override.Deps{Responses: responses, Translator: translator}
	distress := override.NewDistress(deps, a.classifier, alerts)
	distress.Threshold = cfg.Distress.OverrideThreshold
	chain := override.Chain{
		override.NewLanguageMode(deps),
		distress,
		override.NewGreeting(deps, cfg.Assistant.Greetings, cfg.Assistant.Name),
		override.NewTranslation(deps),
	}

	var transcriber capture.Transcriber
	if cfg.Capture.Whisper.Endpoint != "" {
		transcriber = capture.NewWhisper(cfg.Capture.Whisper)
		slog.Info("using transcriber", "name", transcriber.Name(), "endpoint", cfg.Capture.Whisper.Endpoint)
	}

	if cfg.TTS.Backend == "piper" {
		a.synthesizer = piper.New(cfg.TTS.Piper)
		a.closers = append(a.closers, a.synthesizer)
		slog.Info("using piper tts", "endpoint", cfg.TTS.Piper.Endpoint)
	}

	a.dispatcher = dispatch.New(dispatch.Options{
		Responses:   responses,
		Classifier:  a.classifier,
		Chain:       chain,
		Sensors:     newSensors(cfg.Sensors),
		Detector:    detector,
		Transcriber: transcriber,
		Synthesizer: a.synthesizer,
		IdleDelay:   cfg.Loop.IdleDelay,
	})
	return a, nil
}

// Close releases backends in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
