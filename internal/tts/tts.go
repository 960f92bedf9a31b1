// Package tts defines speech output for Joey.
//
// A Speaker voices one reply at a time and never reports failure to the
// turn pipeline: when audio cannot be produced it degrades to text. A
// Synthesizer turns text into WAV audio and is also used directly by the
// transports to return spoken replies to remote callers.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/nadzzz/joey/internal/lang"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language selects the voice.
	Language lang.Code

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates a WAV file from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 22050).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}

// Speaker voices replies. Speak is fire-and-forget.
type Speaker interface {
	Speak(ctx context.Context, text string, code lang.Code)
	Close() error
}

// Console prints replies as "Joey (hi): text".
type Console struct {
	Name string

	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a text speaker writing to out.
func NewConsole(out io.Writer, name string) *Console {
	if name == "" {
		name = "Joey"
	}
	return &Console{Name: name, out: out}
}

// Speak prints one line.
func (c *Console) Speak(_ context.Context, text string, code lang.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s (%s): %s\n", c.Name, code.Or(lang.Base), text)
}

// Close is a no-op.
func (c *Console) Close() error { return nil }

// AudioSpeaker prints each reply and plays it through an external player
// that reads WAV on stdin (aplay, ffplay, paplay).
type AudioSpeaker struct {
	text   *Console
	synth  Synthesizer
	player []string
}

// NewAudioSpeaker creates a speaker. text is always written; audio is
// best effort.
func NewAudioSpeaker(text *Console, synth Synthesizer, player []string) *AudioSpeaker {
	return &AudioSpeaker{text: text, synth: synth, player: player}
}

// Speak prints text and plays its synthesis. Failures are logged.
func (s *AudioSpeaker) Speak(ctx context.Context, text string, code lang.Code) {
	s.text.Speak(ctx, text, code)
	if text == "" || len(s.player) == 0 {
		return
	}

	res, err := s.synth.Synthesize(ctx, text, SynthesizeOpts{Language: code})
	if err != nil {
		slog.Warn("speech synthesis failed, text only", "language", code, "error", err)
		return
	}

	cmd := exec.CommandContext(ctx, s.player[0], s.player[1:]...)
	cmd.Stdin = bytes.NewReader(res.Audio)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		slog.Warn("audio playback failed", "player", s.player[0], "error", err, "stderr", stderr.String())
	}
}

// Close releases the synthesizer.
func (s *AudioSpeaker) Close() error {
	return s.synth.Close()
}
