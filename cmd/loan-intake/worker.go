// cmd/loan-intake/worker.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"loan-intake/internal/api"
	"loan-intake/internal/common/camunda"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	advance "loan-intake/internal/workers/intake/advance-intake-turn"
	notify "loan-intake/internal/workers/offer/notify-applicant"
	record "loan-intake/internal/workers/offer/record-loan-offer"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the Zeebe job workers",
		Long: `Run the intake job workers against a Zeebe broker:

  advance-intake-turn   run one conversational turn on process variables
  record-loan-offer     store an issued offer in PostgreSQL
  notify-applicant      send the offer by email and SMS

Health, readiness and Prometheus metrics are served on the HTTP port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.RequireCamunda(cfg); err != nil {
				return err
			}
			return runWorkers(cmd.Context(), cfg)
		},
	}
}

func runWorkers(ctx context.Context, cfg *config.Config) error {
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info("Starting worker manager...", map[string]interface{}{"broker": cfg.Camunda.BrokerAddress})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name + "-worker")
	defer obs.Shutdown()

	zeebe, err := camunda.NewClient(ctx, cfg.Camunda)
	if err != nil {
		return fmt.Errorf("zeebe client failed after retries: %w", err)
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	checks := map[string]api.Checker{"zeebe": zeebe.HealthCheck}
	manager := camunda.NewManager(zeebe.GetClient(), log)
	defer manager.Close()

	// --- advance-intake-turn ---
	engine, cleanup, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	wcfg := config.GetWorkerConfig(cfg, advance.TaskType)
	acfg := advance.LoadConfig()
	if wcfg.Timeout > 0 {
		acfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	manager.Register(advance.TaskType, wcfg, advance.NewHandler(acfg, engine, obs, log).Handle)

	// --- record-loan-offer ---
	wcfg = config.GetWorkerConfig(cfg, record.TaskType)
	switch {
	case !wcfg.Enabled:
		manager.Register(record.TaskType, wcfg, nil)
	case !cfg.Database.Postgres.Enabled:
		log.Warn("record-loan-offer needs database.postgres.enabled, not starting it", nil)
	default:
		pg, err := openPostgres(ctx, cfg.Database.Postgres, log)
		if err != nil {
			return err
		}
		defer pg.Close()
		checks["postgres"] = pg.Ping

		rcfg := record.LoadConfig()
		if wcfg.Timeout > 0 {
			rcfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		manager.Register(record.TaskType, wcfg, record.NewHandler(rcfg, pg.DB, obs, log).Handle)
	}

	// --- notify-applicant ---
	wcfg = config.GetWorkerConfig(cfg, notify.TaskType)
	if wcfg.Enabled {
		notifier, err := newNotifier(ctx, cfg.Notifications, obs, log)
		if err != nil {
			return err
		}
		manager.Register(notify.TaskType, wcfg, notifier.Handle)
	} else {
		manager.Register(notify.TaskType, wcfg, nil)
	}

	log.Info("Workers registered", map[string]interface{}{"count": manager.Count()})

	// --- Health & Metrics Server ---
	server := api.NewServer(nil, checks, log)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.HTTP.Port) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down health server", map[string]interface{}{"error": err})
	}

	log.Info("Worker manager stopped gracefully", nil)
	return nil
}
