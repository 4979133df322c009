package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIKeys(t *testing.T) {
	keys, err := ParseAPIKeys("tenant1:key1, tenant2:key2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key1": "tenant1", "key2": "tenant2"}, keys)
}

func TestParseAPIKeys_EmptyUsesDevFallback(t *testing.T) {
	keys, err := ParseAPIKeys("")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tenant-key-123": "tenant1"}, keys)
}

func TestParseAPIKeys_Malformed(t *testing.T) {
	_, err := ParseAPIKeys("tenant-without-key")
	assert.Error(t, err)

	_, err = ParseAPIKeys("tenant1:")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/sync")
	t.Setenv("API_KEYS", "t1:k1")
	t.Setenv("PORT", "")
	t.Setenv("MARK_TOUCHES_UPDATED_AT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/sync", cfg.DBURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, map[string]string{"k1": "t1"}, cfg.APIKeys)
	assert.True(t, cfg.MarkTouchesUpdatedAt)
}

func TestLoad_MarkKnob(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/sync")
	t.Setenv("API_KEYS", "")
	t.Setenv("MARK_TOUCHES_UPDATED_AT", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MarkTouchesUpdatedAt)

	t.Setenv("MARK_TOUCHES_UPDATED_AT", "maybe")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_RequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	_, err := Load()
	assert.Error(t, err)
}
