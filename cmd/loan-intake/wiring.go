// cmd/loan-intake/wiring.go
package main

import (
	"context"
	"fmt"
	"time"

	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/intake/oracle"
	"loan-intake/internal/models"
	"loan-intake/pkg/registry"
)

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func buildOffers(cfg config.OfferConfig) intake.StaticOffers {
	return intake.StaticOffers{
		Lenders: append([]string(nil), cfg.Lenders...),
		Terms: models.Offer{
			Amount: cfg.Amount,
			EMI:    cfg.EMI,
			ROI:    cfg.ROI,
			Tenure: cfg.Tenure,
		},
	}
}

// buildOracle returns the configured oracle, wrapped in the Redis cache when
// enabled. The returned cleanup closes whatever was opened.
func buildOracle(ctx context.Context, cfg *config.Config, log logger.Logger) (oracle.Oracle, func(), error) {
	var base oracle.Oracle
	switch cfg.Oracle.Provider {
	case config.OracleProviderRules:
		base = oracle.NewRules()
	case config.OracleProviderLLM:
		llm, err := oracle.NewLLM(oracle.LLMConfig{
			BaseURL:           cfg.Oracle.BaseURL,
			APIKey:            cfg.Oracle.APIKey,
			Model:             cfg.Oracle.Model,
			Temperature:       cfg.Oracle.Temperature,
			Timeout:           config.GetDuration(cfg.Oracle.Timeout),
			MaxRetries:        cfg.Oracle.MaxRetries,
			RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
			Burst:             cfg.Oracle.Burst,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		base = llm
	default:
		return nil, nil, fmt.Errorf("unknown oracle provider %q", cfg.Oracle.Provider)
	}

	if !cfg.Oracle.Cache.Enabled {
		return base, func() {}, nil
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, nil, err
	}
	if err := rdb.Ping(ctx); err != nil {
		// The cache is optional; extraction still works without it.
		log.Warn("oracle cache unavailable, continuing uncached", map[string]interface{}{"error": err})
		_ = rdb.Close()
		return base, func() {}, nil
	}

	cached := oracle.NewCached(base, rdb.Client, rdb.KeyPrefix,
		time.Duration(cfg.Oracle.Cache.TTL)*time.Second, log)
	return cached, func() { _ = rdb.Close() }, nil
}

func buildEngine(ctx context.Context, cfg *config.Config, log logger.Logger) (*intake.Engine, func(), error) {
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("load task registry: %w", err)
	}

	o, cleanup, err := buildOracle(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("build oracle: %w", err)
	}

	return intake.NewEngine(reg, o, buildOffers(cfg.Offer), log), cleanup, nil
}
