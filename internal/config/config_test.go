package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, validateConfig(GetDefaults()))
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
compliance:
  responsible_party: Privacy Office
  stagger_weeks: 2
  default_regulations: [gdpr, hipaa]
cache:
  enabled: true
  redis_url: redis://cache:6379/1
  default_ttl: 1h
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "Privacy Office", cfg.Compliance.ResponsibleParty)
	assert.Equal(t, 2, cfg.Compliance.StaggerWeeks)
	assert.Equal(t, []string{"gdpr", "hipaa"}, cfg.Compliance.DefaultRegulations)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Compliance.MaxPrioritizedActions)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("COMPLIANCE_SERVER_PORT", "7070")
	t.Setenv("COMPLIANCE_COMPLIANCE_RESPONSIBLE_PARTY", "DPO")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "DPO", cfg.Compliance.ResponsibleParty)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"port":       "server:\n  port: 70000\n",
		"log level":  "logging:\n  level: verbose\n",
		"log format": "logging:\n  format: xml\n",
		"stagger":    "compliance:\n  stagger_weeks: -1\n",
		"regulation": "compliance:\n  default_regulations: [sox]\n",
		"batch":      "batch:\n  worker_count: 0\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestWatchRequiresLoadedFile(t *testing.T) {
	mu.Lock()
	current = nil
	mu.Unlock()

	err := Watch(func(*Config) {}, nil)
	require.Error(t, err)
}
