package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Messaging.Driver)
	assert.False(t, cfg.Assignment.QueueConflictCheck)
	assert.Equal(t, 2*time.Second, cfg.Activity.PublishInterval)
	assert.Equal(t, 50, cfg.Activity.BatchSize)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
database:
  driver: memory
assignment:
  queue_conflict_check: true
activity:
  publish_interval: 5s
`), 0o600))

	t.Setenv("APPTQ_SERVER_PORT", "7070")
	t.Setenv("APPTQ_MESSAGING_DRIVER", "kafka")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "kafka", cfg.Messaging.Driver)
	assert.True(t, cfg.Assignment.QueueConflictCheck)
	assert.Equal(t, 5*time.Second, cfg.Activity.PublishInterval)
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APPTQ_MESSAGING_DRIVER", "carrier-pigeon")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "messaging.driver")
}
