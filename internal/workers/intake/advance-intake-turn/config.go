// internal/workers/intake/advance-intake-turn/config.go
package advanceintaketurn

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 2 * time.Minute,
	}
}
