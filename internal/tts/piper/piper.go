// Package piper implements tts.Synthesizer against a Piper server speaking
// the Wyoming protocol (TCP port 10200 in the linuxserver/piper image).
//
// Each Wyoming event on the wire is:
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/joey/internal/config"
	"github.com/nadzzz/joey/internal/lang"
	"github.com/nadzzz/joey/internal/tts"
)

// defaultVoices maps language codes to Piper voice models. Languages
// without an entry use the base language voice.
var defaultVoices = map[lang.Code]string{
	"en":    "en_US-lessac-medium",
	"hi":    "hi_IN-pratham-medium",
	"es":    "es_ES-mls_10246-low",
	"de":    "de_DE-thorsten-medium",
	"fr":    "fr_FR-siwis-medium",
	"it":    "it_IT-riccardo-x_low",
	"pt":    "pt_BR-faber-medium",
	"nl":    "nl_NL-mls-medium",
	"ru":    "ru_RU-ruslan-medium",
	"ar":    "ar_JO-kareem-medium",
	"zh-CN": "zh_CN-huayan-medium",
}

const (
	dialTimeout    = 10 * time.Second
	defaultTimeout = 30 * time.Second
)

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string
	endpoints map[lang.Code]string
	voices    map[lang.Code]string
}

// New creates a Piper synthesizer from config. Per-language endpoints and
// voices override the defaults; keys are resolved through the language
// alias table, so "hindi" and "hi" are equivalent.
func New(cfg config.PiperConfig) *Synthesizer {
	voices := maps.Clone(defaultVoices)
	for k, v := range cfg.Voices {
		if code, ok := lang.Resolve(k); ok {
			voices[code] = v
		}
	}

	endpoints := make(map[lang.Code]string, len(cfg.Endpoints))
	for k, ep := range cfg.Endpoints {
		if code, ok := lang.Resolve(k); ok {
			endpoints[code] = cleanEndpoint(ep)
		}
	}

	return &Synthesizer{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
	}
}

func cleanEndpoint(ep string) string {
	ep = strings.TrimPrefix(ep, "tcp://")
	return strings.TrimPrefix(ep, "http://")
}

// route picks the server and voice for a request.
func (s *Synthesizer) route(opts tts.SynthesizeOpts) (endpoint, voice string) {
	code := opts.Language.Or(lang.Base)

	voice = opts.Voice
	if voice == "" {
		voice = s.voices[code]
	}
	if voice == "" {
		voice = s.voices[lang.Base]
	}

	endpoint = s.endpoints[code]
	if endpoint == "" {
		endpoint = s.endpoint
	}
	return endpoint, voice
}

// Synthesize sends text to the Piper server and returns WAV audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	endpoint, voice := s.route(opts)
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", opts.Language)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	_ = conn.SetDeadline(deadline)

	req := event{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := writeEvent(conn, req, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	return collect(bufio.NewReader(conn))
}

// collect reads audio-start, audio-chunk* and audio-stop and assembles the
// WAV file.
func collect(r *bufio.Reader) (*tts.SynthesizeResult, error) {
	format := audioFormat{Rate: 22050, Width: 2, Channels: 1}
	var pcm bytes.Buffer

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			format.update(evt.Data)
			slog.Debug("piper audio-start", "rate", format.Rate, "channels", format.Channels, "width", format.Width)

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcm.Len())
			return &tts.SynthesizeResult{
				Audio:       format.wav(pcm.Bytes()),
				ContentType: "audio/wav",
				SampleRate:  format.Rate,
				Channels:    format.Channels,
			}, nil

		case "error":
			msg, _ := evt.Data["text"].(string)
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// Close is a no-op; connections are per request.
func (s *Synthesizer) Close() error { return nil }

type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeEvent(w io.Writer, evt event, payload []byte) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(body), len(payload))
	buf.Write(body)
	buf.WriteByte('\n')
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

func readEvent(r *bufio.Reader) (*event, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", header)
	}
	jsonLen, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	body := make([]byte, jsonLen+1) // trailing newline
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt event
	if err := json.Unmarshal(body[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

// audioFormat is the PCM layout announced by audio-start.
type audioFormat struct {
	Rate     int
	Width    int // bytes per sample
	Channels int
}

func (f *audioFormat) update(data map[string]any) {
	if v, ok := data["rate"].(float64); ok {
		f.Rate = int(v)
	}
	if v, ok := data["width"].(float64); ok {
		f.Width = int(v)
	}
	if v, ok := data["channels"].(float64); ok {
		f.Channels = int(v)
	}
}

// wavHeader is the canonical 44-byte RIFF/WAVE PCM header.
type wavHeader struct {
	Riff          [4]byte
	FileLen       uint32
	Wave          [4]byte
	Fmt           [4]byte
	FmtLen        uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataLen       uint32
}

// wav wraps raw PCM in a WAV container.
func (f audioFormat) wav(pcm []byte) []byte {
	h := wavHeader{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		FileLen:       uint32(36 + len(pcm)),
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtLen:        16,
		AudioFormat:   1,
		Channels:      uint16(f.Channels),
		SampleRate:    uint32(f.Rate),
		ByteRate:      uint32(f.Rate * f.Channels * f.Width),
		BlockAlign:    uint16(f.Channels * f.Width),
		BitsPerSample: uint16(f.Width * 8),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataLen:       uint32(len(pcm)),
	}

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	_ = binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(pcm)
	return buf.Bytes()
}
