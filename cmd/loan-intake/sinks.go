// cmd/loan-intake/sinks.go
package main

import (
	"context"
	"time"

	"loan-intake/internal/api"
	"loan-intake/internal/chat"
	"loan-intake/internal/common/aws"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/events"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	notify "loan-intake/internal/workers/offer/notify-applicant"
	record "loan-intake/internal/workers/offer/record-loan-offer"
)

// offerSinks are the places an issued offer goes, built from config. chat
// and serve share them so an offer is handled the same way on either surface.
type offerSinks struct {
	listeners []chat.OfferListener
	checks    map[string]api.Checker
	closers   []func()
}

// Close releases the sinks in reverse order of opening.
func (s *offerSinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func openOfferSinks(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*offerSinks, error) {
	sinks := &offerSinks{checks: map[string]api.Checker{}}

	if cfg.Events.NATS.Enabled {
		pub, err := events.Connect(cfg.Events.NATS.URL, cfg.Events.NATS.Name, cfg.Events.NATS.SubjectPrefix, log)
		if err != nil {
			return nil, err
		}
		sinks.closers = append(sinks.closers, pub.Close)
		sinks.listeners = append(sinks.listeners, pub)
	}

	if cfg.Database.Postgres.Enabled {
		pg, err := openPostgres(ctx, cfg.Database.Postgres, log)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks.closers = append(sinks.closers, func() { _ = pg.Close() })
		sinks.listeners = append(sinks.listeners, record.NewHandler(record.LoadConfig(), pg.DB, obs, log))
		sinks.checks["postgres"] = pg.Ping
	}

	if notificationsEnabled(cfg.Notifications) {
		notifier, err := newNotifier(ctx, cfg.Notifications, obs, log)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks.listeners = append(sinks.listeners, notifier)
	}

	log.Info("Offer sinks ready", map[string]interface{}{"listeners": len(sinks.listeners)})
	return sinks, nil
}

// openPostgres connects with retries and applies the schema.
func openPostgres(ctx context.Context, cfg config.PostgresConfig, log logger.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}

	if err := pg.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	log.Info("PostgreSQL connected successfully", nil)
	return pg, nil
}

func notificationsEnabled(cfg config.NotificationConfig) bool {
	return cfg.Email.Enabled || cfg.SMS.Enabled
}

func newNotifier(ctx context.Context, cfg config.NotificationConfig, obs *observability.Observability, log logger.Logger) (*notify.Handler, error) {
	clients, err := aws.NewClients(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
	if err != nil {
		return nil, err
	}
	return notify.NewHandler(notify.LoadConfig(cfg), clients.SES, clients.SNS, obs, log), nil
}
