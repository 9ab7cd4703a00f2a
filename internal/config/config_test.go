package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.LoadTest.RequestTimeout)
	assert.Equal(t, 1000, cfg.LoadTest.MaxUsers)
	assert.Equal(t, 10*time.Minute, cfg.LoadTest.MaxTestTime)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestManagerValidate(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)
	assert.NoError(t, manager.Validate())
}

func TestManagerValidateRejectsBadValues(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()

	cfg.Server.Port = -1
	assert.Error(t, manager.Validate())
	cfg.Server.Port = 8000

	cfg.LoadTest.RequestTimeout = 0
	assert.Error(t, manager.Validate())
	cfg.LoadTest.RequestTimeout = 10 * time.Second

	cfg.LoadTest.MaxUsers = 0
	assert.Error(t, manager.Validate())
	cfg.LoadTest.MaxUsers = 1000

	cfg.Logging.Level = "verbose"
	assert.Error(t, manager.Validate())
	cfg.Logging.Level = "info"

	assert.NoError(t, manager.Validate())
}

func TestManagerEnvOverride(t *testing.T) {
	t.Setenv("LLM_CHAT_SERVER_PORT", "9090")
	t.Setenv("LLM_CHAT_LOADTEST_MAX_USERS", "50")

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50, cfg.LoadTest.MaxUsers)
}

func TestManagerAccessors(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	assert.NotNil(t, manager.GetServerConfig())
	assert.NotNil(t, manager.GetLLMConfig())
	assert.NotNil(t, manager.GetLoadTestConfig())
	assert.True(t, manager.IsDevelopment())
	assert.False(t, manager.IsProduction())
}
