package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("VNB_AUTH__JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("VNB_POSTGRES__DSN", "postgres://x@db:5432/shop")
	t.Setenv("VNB_CORS__ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "postgres://x@db:5432/shop", cfg.Postgres.DSN)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Checkout.IdempotencyTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "log", cfg.Notify.Driver)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  http_addr: \":9090\"\nstore:\n  driver: memory\n"), 0o600))

	t.Setenv("VNB_CONFIG_FILE", path)
	t.Setenv("VNB_AUTH__JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	t.Setenv("VNB_AUTH__JWT_SECRET", "short")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("VNB_AUTH__JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("VNB_NOTIFY__DRIVER", "kafka")
	_, err = Load()
	require.ErrorContains(t, err, "kafka_brokers")

	t.Setenv("VNB_NOTIFY__DRIVER", "carrier-pigeon")
	_, err = Load()
	require.ErrorContains(t, err, "not supported")
}
