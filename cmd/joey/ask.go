package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nadzzz/joey/internal/message"
	grpctransport "github.com/nadzzz/joey/internal/transport/grpc"
)

var (
	askAddr    string
	askMode    string
	askSource  string
	askTimeout time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask <utterance>",
	Short: "Send one utterance to a running joey over gRPC",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := grpctransport.NewClient(askAddr)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx := cmd.Context()
		if askTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, askTimeout)
			defer cancel()
		}

		res, err := client.Dispatch(ctx, &message.Message{
			Source:       askSource,
			Text:         strings.Join(args, " "),
			ResponseMode: message.ResponseMode(askMode),
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	askCmd.Flags().StringVar(&askAddr, "addr", "localhost:50051", "gRPC address of a running joey")
	askCmd.Flags().StringVar(&askMode, "mode", string(message.ResponseModeText), "response mode: none, text, audio or text+audio")
	askCmd.Flags().StringVar(&askSource, "source", "cli", "sender identifier")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 30*time.Second, "request timeout")
}
