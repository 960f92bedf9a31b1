package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nadzzz/joey/internal/capture"
	"github.com/nadzzz/joey/internal/tts"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a console conversation",
	Long: `Reads one utterance per line from stdin and prints Joey's replies.
With tts.backend=piper the replies are also synthesized and played through
tts.player. The conversation ends on "goodbye", EOF or Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Capture.Backend != "console" {
			return fmt.Errorf("unknown capture backend %q", cfg.Capture.Backend)
		}

		a, err := build(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		console := tts.NewConsole(cmd.OutOrStdout(), cfg.Assistant.Name)
		var speaker tts.Speaker = console
		if a.synthesizer != nil {
			speaker = tts.NewAudioSpeaker(console, a.synthesizer, cfg.TTS.Player)
		}

		src := capture.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), "> ")
		slog.Info("joey starting", "version", version, "classifier_ready", a.classifier.Ready())
		return a.dispatcher.Run(cmd.Context(), src, speaker)
	},
}
