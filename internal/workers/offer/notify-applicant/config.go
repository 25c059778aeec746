// internal/workers/offer/notify-applicant/config.go
package notifyapplicant

import (
	"time"

	"loan-intake/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig(cfg config.NotificationConfig) *Config {
	return &Config{
		EmailEnabled: cfg.Email.Enabled,
		SMSEnabled:   cfg.SMS.Enabled,
		FromEmail:    cfg.Email.FromEmail,
		SenderID:     cfg.SMS.SenderID,
		AWSRegion:    cfg.AWS.Region,
		Timeout:      30 * time.Second,
	}
}
