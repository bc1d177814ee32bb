package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "master.store.cache.amazonaws.com")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("RPM_LIMIT", "")
	t.Setenv("TPM_LIMIT", "")
	t.Setenv("BEDROCK_REGION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "master.store.cache.amazonaws.com", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, int64(10), cfg.RPMLimit)
	assert.Equal(t, int64(10000), cfg.TPMLimit)
	assert.Equal(t, "us-east-1", cfg.BedrockRegion)
	assert.Equal(t, "master.store.cache.amazonaws.com:6379", cfg.RedisAddr())
}

func TestLoadExplicitValues(t *testing.T) {
	t.Setenv("REDIS_HOST", "10.0.2.15")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RPM_LIMIT", "60")
	t.Setenv("TPM_LIMIT", "50000")
	t.Setenv("BEDROCK_REGION", "ap-northeast-2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, int64(60), cfg.RPMLimit)
	assert.Equal(t, int64(50000), cfg.TPMLimit)
	assert.Equal(t, "ap-northeast-2", cfg.BedrockRegion)
}

func TestLoadMissingHost(t *testing.T) {
	t.Setenv("REDIS_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_HOST")
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "REDIS_PORT", "redis"},
		{"port out of range", "REDIS_PORT", "70000"},
		{"rpm not a number", "RPM_LIMIT", "ten"},
		{"rpm negative", "RPM_LIMIT", "-5"},
		{"tpm zero", "TPM_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_HOST", "localhost")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
