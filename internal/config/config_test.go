package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.AppHost)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreFile, cfg.PrimaryStore)
	assert.Equal(t, StoreMongo, cfg.SecondaryStore)
	assert.Equal(t, 2*time.Second, cfg.SecondaryPingTimeout)
	assert.Equal(t, 10*time.Second, cfg.MigrateConnectTimeout)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.HasSecondary())
	assert.Equal(t, filepath.Join("data", "users.json"), cfg.UsersPath())
	assert.Equal(t, filepath.Join("data", "stats.json"), cfg.StatsPath())
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoad_FromEnvFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "config.env")
	content := "APP_PORT=9090\nSECONDARY_STORE=postgres\nKAFKA_BROKERS=k1:9092,k2:9092\nREDIS_STATS_TTL=30s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, StorePostgres, cfg.SecondaryStore)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.RedisStatsTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown primary", env: map[string]string{"PRIMARY_STORE": "sqlite"}},
		{name: "unknown secondary", env: map[string]string{"SECONDARY_STORE": "cassandra"}},
		{name: "same stores", env: map[string]string{"PRIMARY_STORE": "mongo", "SECONDARY_STORE": "mongo"}},
		{name: "bad cost", env: map[string]string{"BCRYPT_COST": "2"}},
		{name: "bad duration", env: map[string]string{"SECONDARY_PING_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("nonexistent.env")
			assert.Error(t, err)
		})
	}
}

func TestHasSecondary(t *testing.T) {
	assert.False(t, (&Config{SecondaryStore: StoreNone}).HasSecondary())
	assert.False(t, (&Config{}).HasSecondary())
	assert.True(t, (&Config{SecondaryStore: StorePostgres}).HasSecondary())
}
