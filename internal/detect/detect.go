// Package detect guesses the language of an utterance. The guess is logged
// with each turn for diagnostics; it never drives dispatch.
package detect

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"

	"github.com/nadzzz/joey/internal/lang"
)

// MinRunes is the shortest input worth detecting; shorter text is reported
// as the base language.
const MinRunes = 4

// Detector returns a best-guess language, or lang.Base when unsure.
type Detector interface {
	Detect(text string) lang.Code
}

// Nop always reports the base language.
type Nop struct{}

// Detect returns lang.Base.
func (Nop) Detect(string) lang.Code { return lang.Base }

var codes = map[lingua.Language]lang.Code{
	lingua.English:    "en",
	lingua.Hindi:      "hi",
	lingua.Spanish:    "es",
	lingua.Urdu:       "ur",
	lingua.Bengali:    "bn",
	lingua.Japanese:   "ja",
	lingua.German:     "de",
	lingua.French:     "fr",
	lingua.Chinese:    "zh-CN",
	lingua.Russian:    "ru",
	lingua.Arabic:     "ar",
	lingua.Portuguese: "pt",
	lingua.Italian:    "it",
	lingua.Korean:     "ko",
	lingua.Dutch:      "nl",
}

// Lingua detects among the supported languages with lingua-go.
type Lingua struct {
	detector lingua.LanguageDetector
}

// NewLingua builds a detector restricted to the supported languages.
// Models load lazily on first use.
func NewLingua() *Lingua {
	languages := make([]lingua.Language, 0, len(codes))
	for l := range codes {
		languages = append(languages, l)
	}
	d := lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).Build()
	slog.Info("language detector initialized", "languages", len(languages))
	return &Lingua{detector: d}
}

// Detect returns the detected language or lang.Base.
func (l *Lingua) Detect(text string) lang.Code {
	if utf8.RuneCountInString(text) < MinRunes {
		return lang.Base
	}
	detected, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		slog.Debug("could not detect language, using base")
		return lang.Base
	}
	if code, ok := codes[detected]; ok {
		return code
	}
	return lang.Base
}
