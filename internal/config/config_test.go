package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: development\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8086, cfg.Server.HTTPPort)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 15*time.Minute, cfg.Redis.SnapshotTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "insight-engine", cfg.Kafka.ConsumerGroup)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
server:
  http_port: 9090
kafka:
  enabled: true
  brokers:
    - broker-1:9092
auth:
  enabled: true
  jwt_secret: test-secret
automation:
  overlay_rules:
    - name: no-siren
      expression: 'severity == "critical"'
      deny:
        - playSiren
`))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	require.Len(t, cfg.Automation.OverlayRules, 1)
	assert.Equal(t, "no-siren", cfg.Automation.OverlayRules[0].Name)
	assert.Equal(t, []string{"playSiren"}, cfg.Automation.OverlayRules[0].Deny)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{HTTPPort: 8086},
			Database: DatabaseConfig{DSN: "postgres://localhost/insight"},
			Redis:    RedisConfig{SnapshotTTL: time.Minute},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, Validate(valid()))
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.HTTPPort = 0
		assert.Error(t, Validate(cfg))
		cfg.Server.HTTPPort = 70000
		assert.Error(t, Validate(cfg))
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Database.DSN = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("kafka enabled without brokers", func(t *testing.T) {
		cfg := valid()
		cfg.Kafka.Enabled = true
		assert.Error(t, Validate(cfg))
	})

	t.Run("auth enabled without secret", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.Enabled = true
		assert.Error(t, Validate(cfg))
	})

	t.Run("non-positive snapshot ttl", func(t *testing.T) {
		cfg := valid()
		cfg.Redis.SnapshotTTL = 0
		assert.Error(t, Validate(cfg))
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
