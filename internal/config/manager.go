// Package config provides environment-based configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lingo-relay/internal/types"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager backed by environment variables.
type Manager struct {
	serverConfig      types.ServerConfig
	authConfig        types.AuthConfig
	performanceConfig types.PerformanceConfig
	logConfig         types.LogConfig
	databaseConfig    types.DatabaseConfig
	providerConfig    types.ProviderConfig
	botConfig         types.BotConfig
	redisDSN          string
}

// NewManager loads configuration from the environment (and .env if present).
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	m := &Manager{
		serverConfig: types.ServerConfig{
			Port:                    parseInteger(os.Getenv("PORT"), 5000),
			Host:                    getEnvOrDefault("HOST", "0.0.0.0"),
			ReadTimeout:             parseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
			WriteTimeout:            parseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 120),
			IdleTimeout:             parseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
			GracefulShutdownTimeout: parseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 10),
		},
		authConfig: types.AuthConfig{
			ChannelSecret:      os.Getenv("CHANNEL_SECRET"),
			ChannelAccessToken: os.Getenv("CHANNEL_ACCESS_TOKEN"),
		},
		performanceConfig: types.PerformanceConfig{
			MaxConcurrentRequests:     parseInteger(os.Getenv("MAX_CONCURRENT_REQUESTS"), 100),
			MaxConcurrentTranslations: parseInteger(os.Getenv("MAX_CONCURRENT_TRANSLATIONS"), 4),
		},
		logConfig: types.LogConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
			EnableFile: parseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
			FilePath:   getEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
		},
		databaseConfig: types.DatabaseConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		providerConfig: types.ProviderConfig{
			GoogleBaseURL: getEnvOrDefault("GOOGLE_TRANSLATE_BASE_URL", "https://translate.googleapis.com"),
			DeepLAPIKey:   os.Getenv("DEEPL_API_KEY"),
			DeepLBaseURL:  getEnvOrDefault("DEEPL_API_BASE_URL", "https://api-free.deepl.com"),
		},
		botConfig: types.BotConfig{
			DefaultLanguages:  parseArray(os.Getenv("DEFAULT_TRANSLATE_LANGS"), []string{"zh-TW"}),
			InactiveGroupDays: parseInteger(os.Getenv("INACTIVE_GROUP_DAYS"), 20),
			MasterUserIDs:     parseArray(os.Getenv("MASTER_USER_IDS"), nil),
			MessageAPIBaseURL: getEnvOrDefault("MESSAGE_API_BASE_URL", "https://api.line.me"),
		},
		redisDSN: os.Getenv("REDIS_DSN"),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks that the configuration is usable.
func (m *Manager) Validate() error {
	if m.serverConfig.Port < 1 || m.serverConfig.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", m.serverConfig.Port)
	}
	if m.databaseConfig.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if m.authConfig.ChannelSecret == "" {
		return fmt.Errorf("CHANNEL_SECRET is required")
	}
	if m.performanceConfig.MaxConcurrentTranslations < 1 {
		return fmt.Errorf("MAX_CONCURRENT_TRANSLATIONS must be at least 1")
	}
	if len(m.botConfig.DefaultLanguages) == 0 {
		return fmt.Errorf("DEFAULT_TRANSLATE_LANGS must contain at least one language code")
	}
	return nil
}

// GetAuthConfig returns the webhook credentials.
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.authConfig
}

// GetPerformanceConfig returns performance configuration.
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig {
	return m.performanceConfig
}

// GetLogConfig returns logging configuration.
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.logConfig
}

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.databaseConfig
}

// GetProviderConfig returns translation provider configuration.
func (m *Manager) GetProviderConfig() types.ProviderConfig {
	return m.providerConfig
}

// GetBotConfig returns bot behavior configuration.
func (m *Manager) GetBotConfig() types.BotConfig {
	return m.botConfig
}

// GetRedisDSN returns the Redis DSN, empty when the memory store should be used.
func (m *Manager) GetRedisDSN() string {
	return m.redisDSN
}

// GetEffectiveServerConfig returns the server configuration.
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.serverConfig
}

// DisplayServerConfig logs a configuration summary at startup.
func (m *Manager) DisplayServerConfig() {
	storage := "memory"
	if m.redisDSN != "" {
		storage = "redis"
	}
	deepl := "disabled (no API key)"
	if m.providerConfig.DeepLAPIKey != "" {
		deepl = m.providerConfig.DeepLBaseURL
	}

	logrus.Info("")
	logrus.Info("======= Server Configuration =======")
	logrus.Infof("  Listen: %s:%d", m.serverConfig.Host, m.serverConfig.Port)
	logrus.Infof("  Storage: %s", storage)
	logrus.Infof("  DeepL: %s", deepl)
	logrus.Infof("  Default languages: %s", strings.Join(m.botConfig.DefaultLanguages, ", "))
	logrus.Infof("  Max concurrent translations: %d", m.performanceConfig.MaxConcurrentTranslations)
	logrus.Infof("  Inactive group purge: %d days", m.botConfig.InactiveGroupDays)
	logrus.Info("====================================")
	logrus.Info("")
}

func getEnvOrDefault(value, defaultValue string) string {
	if v := os.Getenv(value); v != "" {
		return v
	}
	return defaultValue
}

func parseInteger(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolean(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseArray(value string, defaultValue []string) []string {
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
