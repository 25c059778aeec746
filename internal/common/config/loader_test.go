package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	path := writeConfig(t, `
app:
  name: loan-intake
oracle:
  base_url: ${OPENAI_BASE_URL}
workers:
  advance-intake-turn:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, OracleProviderLLM, cfg.Oracle.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Oracle.BaseURL)
	assert.Equal(t, "ollama", cfg.Oracle.APIKey)
	assert.Equal(t, "llama3", cfg.Oracle.Model)
	assert.Equal(t, 0.0, cfg.Oracle.Temperature)
	assert.Equal(t, []string{"HDFC", "ICICI"}, cfg.Offer.Lenders)
	assert.Equal(t, int64(4000000), cfg.Offer.Amount)
	assert.Equal(t, int64(42000), cfg.Offer.EMI)
	assert.Equal(t, 8.1, cfg.Offer.ROI)
	assert.Equal(t, 20, cfg.Offer.Tenure)
	assert.Equal(t, 8080, cfg.HTTP.Port)

	w := cfg.Workers["advance-intake-turn"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ORACLE_MODEL", "llama3.1")
	t.Setenv("ORACLE_PROVIDER", "rules")
	path := writeConfig(t, `
oracle:
  model: llama3
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, "llama3.1", cfg.Oracle.Model)
	assert.Equal(t, OracleProviderRules, cfg.Oracle.Provider)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "unknown oracle provider",
			mutate:  func(cfg *Config) { cfg.Oracle.Provider = "magic" },
			wantErr: "oracle.provider",
		},
		{
			name:    "cache needs redis",
			mutate:  func(cfg *Config) { cfg.Oracle.Cache.Enabled = true; cfg.Database.Redis.Address = "" },
			wantErr: "database.redis.address",
		},
		{
			name:    "enabled postgres needs host",
			mutate:  func(cfg *Config) { cfg.Database.Postgres.Enabled = true },
			wantErr: "database.postgres.host",
		},
		{
			name: "disabled postgres is not checked",
			mutate: func(cfg *Config) {
				cfg.Database.Postgres.Enabled = false
				cfg.Database.Postgres.Host = ""
			},
		},
		{
			name:    "email needs sender",
			mutate:  func(cfg *Config) { cfg.Notifications.Email.Enabled = true },
			wantErr: "from_email",
		},
		{
			name:    "nats needs url",
			mutate:  func(cfg *Config) { cfg.Events.NATS.Enabled = true },
			wantErr: "events.nats.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"record-loan-offer": {Enabled: false, Timeout: 5000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "record-loan-offer"))
	assert.True(t, IsWorkerEnabled(cfg, "notify-applicant"))
	assert.Equal(t, 5000, GetWorkerConfig(cfg, "record-loan-offer").Timeout)
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "notify-applicant").Timeout)
	assert.Equal(t, "1.5s", GetDuration(1500).String())
	assert.Error(t, RequireCamunda(cfg))
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "loans", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=loans sslmode=disable", p.GetDSN())
}
