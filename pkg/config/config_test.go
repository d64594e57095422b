package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFailsWithoutSigningSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	require.ErrorIs(t, err, ErrMissingSigningSecret)
	assert.Nil(t, cfg)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("SUPER_ADMIN_IPS", "10.0.0.1, 10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.SuperAdmin.RateLimit)
	assert.Equal(t, time.Minute, cfg.SuperAdmin.RateLimitWindow)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.SuperAdmin.AllowedIPs)
	assert.False(t, cfg.RedisEnabled())
}

func TestValidateRejectsSharedSecret(t *testing.T) {
	cfg := &Config{
		JWT:        JWTConfig{Secret: "same", RefreshSecret: "same"},
		SuperAdmin: SuperAdminConfig{RateLimit: 5},
	}
	require.Error(t, cfg.Validate())

	cfg.JWT.RefreshSecret = "other"
	require.NoError(t, cfg.Validate())
}
