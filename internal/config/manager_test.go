package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", ":memory:")
	t.Setenv("CHANNEL_SECRET", "secret")
}

func TestNewManagerDefaults(t *testing.T) {
	setRequiredEnv(t)

	cm, err := NewManager()
	require.NoError(t, err)

	server := cm.GetEffectiveServerConfig()
	assert.Equal(t, 5000, server.Port)
	assert.Equal(t, "0.0.0.0", server.Host)

	perf := cm.GetPerformanceConfig()
	assert.Equal(t, 4, perf.MaxConcurrentTranslations)

	bot := cm.GetBotConfig()
	assert.Equal(t, []string{"zh-TW"}, bot.DefaultLanguages)
	assert.Equal(t, 20, bot.InactiveGroupDays)

	provider := cm.GetProviderConfig()
	assert.Equal(t, "https://api-free.deepl.com", provider.DeepLBaseURL)
}

func TestNewManagerOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_CONCURRENT_TRANSLATIONS", "2")
	t.Setenv("DEFAULT_TRANSLATE_LANGS", "zh-TW, ja ,en")
	t.Setenv("MASTER_USER_IDS", "U1,U2")

	cm, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 8080, cm.GetEffectiveServerConfig().Port)
	assert.Equal(t, 2, cm.GetPerformanceConfig().MaxConcurrentTranslations)
	assert.Equal(t, []string{"zh-TW", "ja", "en"}, cm.GetBotConfig().DefaultLanguages)
	assert.Equal(t, []string{"U1", "U2"}, cm.GetBotConfig().MasterUserIDs)
}

func TestNewManagerValidation(t *testing.T) {
	t.Setenv("CHANNEL_SECRET", "secret")
	t.Setenv("DATABASE_DSN", "")

	_, err := NewManager()
	assert.Error(t, err)
}

func TestNewManagerInvalidValuesFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "not-a-number")

	cm, err := NewManager()
	require.NoError(t, err)
	assert.Equal(t, 5000, cm.GetEffectiveServerConfig().Port)
}
