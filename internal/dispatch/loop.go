package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nadzzz/joey/internal/capture"
	"github.com/nadzzz/joey/internal/tts"
)

// Run is the interactive loop: greet, then capture and resolve utterances
// until the user says goodbye, the source is exhausted or ctx is done.
// Empty captures are skipped after a short pause.
func (d *Dispatcher) Run(ctx context.Context, src capture.Source, sp tts.Speaker) error {
	w := d.Welcome()
	sp.Speak(ctx, w.Text, w.Lang)

	for {
		if ctx.Err() != nil {
			return nil
		}

		u, err := src.Capture(ctx)
		switch {
		case errors.Is(err, capture.ErrClosed):
			slog.Info("capture source closed, stopping")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			slog.Warn("capture failed", "error", err)
			u = ""
		}

		res, err := d.Turn(ctx, u)
		if errors.Is(err, ErrEmptyUtterance) {
			if !d.idle(ctx) {
				return nil
			}
			continue
		}
		if err != nil {
			return err
		}

		for _, r := range res.Replies {
			sp.Speak(ctx, r.Text, r.Lang)
		}
		if res.Stop {
			slog.Info("stop requested, leaving loop", "turn_id", res.ID)
			return nil
		}
	}
}

// idle waits out the idle delay. It returns false if ctx ended first.
func (d *Dispatcher) idle(ctx context.Context) bool {
	timer := time.NewTimer(d.idleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
