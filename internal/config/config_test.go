package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_FALLBACK_MESSAGE_ENABLED", "")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 24*time.Hour, cfg.ConversationExpiry)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.False(t, cfg.AuthzAllowUndeclared)
	assert.False(t, cfg.AIFallbackMessageEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("AI_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("AUTHZ_ALLOW_UNDECLARED", "true")
	t.Setenv("LOGIN_RATE_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "gk", cfg.AIAPIKey())
	assert.True(t, cfg.AuthzAllowUndeclared)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestValidate(t *testing.T) {
	cfg := &Config{AIProvider: "gemini", EventWorkers: 1}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "x"
	cfg.AIProvider = "openai"
	assert.Error(t, cfg.Validate())

	cfg.AIProvider = "groq"
	cfg.LockBackend = "etcd"
	assert.Error(t, cfg.Validate())

	cfg.LockBackend = "local"
	assert.NoError(t, cfg.Validate())
}

func TestConversationLockTTLOutlivesModelCall(t *testing.T) {
	cfg := &Config{AITimeout: 30 * time.Second}
	assert.Equal(t, 2*time.Minute, cfg.ConversationLockTTL())

	cfg.AITimeout = 5 * time.Minute
	assert.Greater(t, cfg.ConversationLockTTL(), cfg.AITimeout)
}
