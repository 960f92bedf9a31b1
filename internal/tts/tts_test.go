package tts

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/joey/internal/lang"
)

type fakeSynth struct {
	audio  []byte
	err    error
	calls  []SynthesizeOpts
	closed bool
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string, opts SynthesizeOpts) (*SynthesizeResult, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &SynthesizeResult{Audio: f.audio, ContentType: "audio/wav"}, nil
}

func (f *fakeSynth) Close() error {
	f.closed = true
	return nil
}

func TestConsole(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, "")
	c.Speak(context.Background(), "नमस्ते!", "hi")
	c.Speak(context.Background(), "Hello!", "")
	assert.Equal(t, "Joey (hi): नमस्ते!\nJoey (en): Hello!\n", out.String())
}

func TestAudioSpeaker_Plays(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.wav")
	synth := &fakeSynth{audio: []byte("RIFFdata")}
	var out bytes.Buffer

	s := NewAudioSpeaker(NewConsole(&out, "Joey"), synth, []string{"sh", "-c", "cat > " + dst})
	s.Speak(context.Background(), "Hola", "es")

	assert.Equal(t, "Joey (es): Hola\n", out.String())
	require.Len(t, synth.calls, 1)
	assert.Equal(t, lang.Code("es"), synth.calls[0].Language)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "RIFFdata", string(got))

	require.NoError(t, s.Close())
	assert.True(t, synth.closed)
}

func TestAudioSpeaker_DegradesToText(t *testing.T) {
	tests := []struct {
		name   string
		synth  *fakeSynth
		player []string
	}{
		{"synthesis fails", &fakeSynth{err: errors.New("down")}, []string{"cat"}},
		{"player fails", &fakeSynth{audio: []byte("x")}, []string{"false"}},
		{"no player", &fakeSynth{audio: []byte("x")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewAudioSpeaker(NewConsole(&out, "Joey"), tt.synth, tt.player)
			s.Speak(context.Background(), "Hello!", "en")
			assert.Equal(t, "Joey (en): Hello!\n", out.String())
		})
	}
}
