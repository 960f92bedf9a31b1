package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/joey/internal/health"
	"github.com/nadzzz/joey/internal/transport"
	grpctransport "github.com/nadzzz/joey/internal/transport/grpc"
	httptransport "github.com/nadzzz/joey/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dispatch API over HTTP and gRPC",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		healthServer := health.New(cfg.Server.HealthPort)

		var transports []transport.Transport
		if cfg.Transports.GRPC.Enabled {
			transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, healthServer))
		}
		if cfg.Transports.HTTP.Enabled {
			transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
		}
		if len(transports) == 0 {
			return errors.New("no transports enabled, enable at least one in config")
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return healthServer.ListenAndServe(ctx)
		})
		for _, t := range transports {
			g.Go(func() error {
				slog.Info("starting transport", "name", t.Name())
				if err := t.Listen(ctx, a.dispatcher.Handle); err != nil {
					return fmt.Errorf("%s transport: %w", t.Name(), err)
				}
				return nil
			})
		}

		a.classifier.OnReady(healthServer.SetReady)
		slog.Info("joey ready",
			"version", version,
			"transports", len(transports),
			"health_port", cfg.Server.HealthPort,
			"classifier_ready", a.classifier.Ready())

		<-ctx.Done()
		slog.Info("shutdown signal received, draining...")
		for _, t := range transports {
			if err := t.Close(); err != nil {
				slog.Error("transport close error", "name", t.Name(), "error", err)
			}
		}

		err = g.Wait()
		slog.Info("joey stopped")
		return err
	},
}
