// internal/workers/offer/record-loan-offer/config.go
package recordloanoffer

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
