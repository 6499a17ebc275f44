package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orderchat?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 64, cfg.WSSendBuffer)
	assert.Equal(t, "open", cfg.OrderStatusPolicy)
}

func TestLoadConfig_InvalidNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orderchat?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("DB_TIMEOUT_SEC", "abc")
	t.Setenv("WS_SEND_BUFFER", "8")

	cfg := LoadConfig()

	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 8, cfg.WSSendBuffer)
}
