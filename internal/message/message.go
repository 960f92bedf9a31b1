// Package message defines the core data types flowing through the Joey turn pipeline.
package message

import (
	"encoding/base64"
	"time"

	"github.com/nadzzz/joey/internal/intent"
	"github.com/nadzzz/joey/internal/lang"
)

// ResponseMode controls what output a transport caller wants back.
// The caller declares desired output in the request body, and the server
// populates or omits response fields accordingly.
type ResponseMode string

const (
	// ResponseModeNone suppresses the spoken replies; only the resolved
	// intent and entities are returned.
	ResponseModeNone ResponseMode = "none"

	// ResponseModeText returns the reply text.
	ResponseModeText ResponseMode = "text"

	// ResponseModeAudio returns TTS-synthesized audio only (no text).
	ResponseModeAudio ResponseMode = "audio"

	// ResponseModeTextAudio returns both text and synthesized audio.
	ResponseModeTextAudio ResponseMode = "text+audio"
)

// Entities are the parameters extracted from an utterance.
type Entities struct {
	// Name is a person name (greeting target or the user's own name).
	Name string `json:"name,omitempty"`

	// Language is the canonical code of a requested language.
	Language lang.Code `json:"language,omitempty"`

	// Payload is free text to act on, e.g. the phrase to translate.
	Payload string `json:"payload,omitempty"`
}

// Match is a classification outcome.
type Match struct {
	Intent     intent.Tag `json:"intent"`
	Confidence float64    `json:"confidence"`
	Entities   Entities   `json:"entities"`
}

// Reply is one line Joey speaks, in the language it should be voiced in.
type Reply struct {
	Text string    `json:"text"`
	Lang lang.Code `json:"lang"`
}

// Resolver names for TurnResult.ResolvedBy.
const (
	ResolvedByLanguageMode = "language_mode"
	ResolvedByDistress     = "distress"
	ResolvedByGreeting     = "greeting"
	ResolvedByTranslation  = "translation"
	ResolvedByClassifier   = "classifier"
)

// TurnResult is the outcome of one resolved utterance.
type TurnResult struct {
	// ID identifies the turn in logs.
	ID string `json:"id"`

	// Utterance is the normalised input text.
	Utterance string `json:"utterance"`

	// ResolvedBy names the override matcher that handled the turn, or
	// "classifier" when none did.
	ResolvedBy string `json:"resolved_by"`

	Intent     intent.Tag `json:"intent"`
	Confidence float64    `json:"confidence"`
	Entities   Entities   `json:"entities"`

	// Replies are spoken in order.
	Replies []Reply `json:"replies"`

	// Stop is set when the user asked Joey to exit.
	Stop bool `json:"stop,omitempty"`

	// DetectedLanguage is the best-guess language of the input. Diagnostic only.
	DetectedLanguage lang.Code `json:"detected_language,omitempty"`

	// ActiveLanguage is the response language after the turn.
	ActiveLanguage lang.Code `json:"active_language"`
}

// Say appends a reply.
func (r *TurnResult) Say(text string, code lang.Code) {
	r.Replies = append(r.Replies, Reply{Text: text, Lang: code})
}

// Text joins the reply texts with spaces.
func (r *TurnResult) Text() string {
	var n int
	for _, rep := range r.Replies {
		n += len(rep.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, rep := range r.Replies {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, rep.Text...)
	}
	return string(buf)
}

// Message represents an incoming request from any transport.
type Message struct {
	// ID is a unique identifier for this message (UUID).
	ID string `json:"id"`

	// Source identifies the sender (e.g., "kitchen-speaker", "phone-alice").
	Source string `json:"source"`

	// Audio is the raw audio payload. Nil if the message is text-only.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of the audio (e.g., "audio/wav", "audio/ogg").
	ContentType string `json:"content_type,omitempty"`

	// Text is an optional pre-transcribed utterance (bypasses transcription).
	Text string `json:"text,omitempty"`

	// ResponseMode controls the output:
	//   "none"      : intent and entities only
	//   "text"      : reply text
	//   "audio"     : TTS-synthesized audio only
	//   "text+audio": both text and audio
	// Defaults to "text" when TTS is disabled, "text+audio" when TTS is enabled.
	ResponseMode ResponseMode `json:"response_mode,omitempty"`

	// Timestamp is when the message was received.
	Timestamp time.Time `json:"timestamp"`
}

// HasAudio returns true if the message contains an audio payload.
func (m *Message) HasAudio() bool {
	return len(m.Audio) > 0
}

// DispatchResult is the outcome of processing a transport message.
type DispatchResult struct {
	// MessageID is the original message ID.
	MessageID string `json:"message_id"`

	// Transcript is the text produced by audio transcription, or the text input.
	Transcript string `json:"transcript,omitempty"`

	// Turn is the resolved turn. Nil when processing failed before resolution.
	Turn *TurnResult `json:"turn,omitempty"`

	// ResponseText is the joined reply text.
	// Populated when response_mode is "text" or "text+audio".
	ResponseText string `json:"response_text,omitempty"`

	// ResponseAudio is the TTS-synthesized audio as a base64-encoded string.
	// Populated when response_mode is "audio" or "text+audio".
	ResponseAudio string `json:"response_audio,omitempty"`

	// ResponseContentType is the MIME type of ResponseAudio (e.g., "audio/wav").
	ResponseContentType string `json:"response_content_type,omitempty"`

	// Error is set if processing failed at any stage.
	Error string `json:"error,omitempty"`
}

// SetResponseAudioBytes base64-encodes raw audio bytes into ResponseAudio.
func (r *DispatchResult) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}
