package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("DEBUG_ROUTES", "true")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.True(t, cfg.UseMemoryStore())
	assert.True(t, cfg.DebugRoutes)
	assert.Equal(t, "messenger.events", cfg.AMQPExchange)
}

func TestGetEnvAsBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DEBUG_ROUTES", "maybe")
	assert.False(t, getEnvAsBool("DEBUG_ROUTES", false))
}
