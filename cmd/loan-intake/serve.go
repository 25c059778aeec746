// cmd/loan-intake/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"loan-intake/internal/api"
	"loan-intake/internal/chat"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the intake session over HTTP",
		Long: `Serve the intake session over HTTP. Issued offers are published to NATS,
recorded in PostgreSQL and sent to the applicant when those integrations
are enabled in config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (default from config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info("Starting intake API...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"oracle":      cfg.Oracle.Provider,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	engine, cleanup, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sinks, err := openOfferSinks(ctx, cfg, obs, log)
	if err != nil {
		return err
	}
	defer sinks.Close()

	svc := chat.NewService(engine, log, chat.WithListeners(sinks.listeners...), chat.WithObservability(obs))
	server := api.NewServer(svc, sinks.checks, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.HTTP.Port) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping API...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down API server", map[string]interface{}{"error": err})
		return err
	}

	log.Info("Intake API stopped gracefully", nil)
	return nil
}
