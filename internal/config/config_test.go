package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("IMPORT_MAX_UPLOAD_BYTES", "2048")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, int64(2048), cfg.Import.MaxUploadBytes)
	assert.Equal(t, "postgres://postgres:secret@db:5432/ledger?sslmode=disable", cfg.ConnectionString())
}
