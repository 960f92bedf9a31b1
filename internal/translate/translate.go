// Package translate defines the machine translation collaborator.
//
// Joey ships two backends: Google's public translate endpoint and any
// OpenAI-compatible chat completion endpoint (OpenAI, Ollama, vLLM).
package translate

import (
	"context"
	"errors"

	"github.com/nadzzz/joey/internal/lang"
)

// ErrTranslation wraps every backend failure, so callers can fall back to
// the untranslated text with errors.Is.
var ErrTranslation = errors.New("translation failed")

// Translator renders text in a target language.
type Translator interface {
	// Name returns the backend identifier (e.g., "google", "openai").
	Name() string

	// Translate returns text rendered in target. Errors wrap ErrTranslation.
	Translate(ctx context.Context, text string, target lang.Code) (string, error)
}

// Func adapts a function to Translator.
type Func func(ctx context.Context, text string, target lang.Code) (string, error)

// Name returns "func".
func (f Func) Name() string { return "func" }

// Translate calls f.
func (f Func) Translate(ctx context.Context, text string, target lang.Code) (string, error) {
	return f(ctx, text, target)
}

// Disabled fails every request. It is used when no backend is configured.
type Disabled struct{}

// Name returns "disabled".
func (Disabled) Name() string { return "disabled" }

// Translate always fails.
func (Disabled) Translate(context.Context, string, lang.Code) (string, error) {
	return "", ErrTranslation
}
