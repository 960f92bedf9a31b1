package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadzzz/joey/internal/message"
	"github.com/nadzzz/joey/internal/tts"
)

// resolveResponseMode determines the effective ResponseMode for a message.
// If the caller didn't specify one, the default depends on whether TTS is available.
func (d *Dispatcher) resolveResponseMode(mode message.ResponseMode) message.ResponseMode {
	switch mode {
	case message.ResponseModeNone, message.ResponseModeText,
		message.ResponseModeAudio, message.ResponseModeTextAudio:
		return mode
	default:
		if d.synthesizer != nil {
			return message.ResponseModeTextAudio
		}
		return message.ResponseModeText
	}
}

func wantText(mode message.ResponseMode) bool {
	return mode == message.ResponseModeText || mode == message.ResponseModeTextAudio
}

func wantAudio(mode message.ResponseMode) bool {
	return mode == message.ResponseModeAudio || mode == message.ResponseModeTextAudio
}

// Handle runs a transport message through transcription and one turn.
// Processing failures are reported in the result, never as an error, so
// the sender always gets an answer.
func (d *Dispatcher) Handle(ctx context.Context, msg *message.Message) (*message.DispatchResult, error) {
	start := time.Now()
	logger := slog.With("message_id", msg.ID, "source", msg.Source)

	respMode := d.resolveResponseMode(msg.ResponseMode)
	logger.Info("dispatch started", "response_mode", respMode)

	result := &message.DispatchResult{MessageID: msg.ID}

	var utterance string
	switch {
	case msg.HasAudio():
		if d.transcriber == nil {
			result.Error = "audio input is not supported: no transcriber configured"
			return result, nil
		}
		logger.Debug("transcribing audio", "content_type", msg.ContentType, "bytes", len(msg.Audio))
		tr, err := d.transcriber.Transcribe(ctx, msg.Audio, msg.ContentType)
		if err != nil {
			result.Error = fmt.Sprintf("transcription failed: %v", err)
			logger.Error("transcription failed", "error", err)
			return result, nil
		}
		utterance = tr.Text
		logger.Info("transcription complete", "backend", d.transcriber.Name(), "text_length", len(utterance), "language", tr.Language)
	case msg.Text != "":
		utterance = msg.Text
	default:
		result.Error = "message has no audio and no text"
		return result, nil
	}
	result.Transcript = utterance

	turn, err := d.Turn(ctx, utterance)
	if err != nil {
		result.Error = fmt.Sprintf("nothing to resolve: %v", err)
		return result, nil
	}
	result.Turn = turn

	if wantText(respMode) {
		result.ResponseText = turn.Text()
	}

	if wantAudio(respMode) && d.synthesizer != nil && len(turn.Replies) > 0 {
		d.synthesize(ctx, logger, result, turn)
	}

	if respMode == message.ResponseModeNone {
		trimmed := *turn
		trimmed.Replies = nil
		result.Turn = &trimmed
	}

	logger.Info("dispatch complete", "duration", time.Since(start), "intent", turn.Intent)
	return result, nil
}

// synthesize voices the joined replies in the language of the first one.
func (d *Dispatcher) synthesize(ctx context.Context, logger *slog.Logger, result *message.DispatchResult, turn *message.TurnResult) {
	code := turn.Replies[0].Lang
	text := turn.Text()
	logger.Debug("synthesizing response", "language", code, "text_length", len(text))

	res, err := d.synthesizer.Synthesize(ctx, text, tts.SynthesizeOpts{Language: code})
	if err != nil {
		logger.Warn("TTS synthesis failed, continuing without audio", "error", err)
		return
	}
	result.SetResponseAudioBytes(res.Audio)
	result.ResponseContentType = res.ContentType
	logger.Info("TTS synthesis complete", "audio_bytes", len(res.Audio))
}
