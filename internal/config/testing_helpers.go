package config

import "lingo-relay/internal/types"

// MockConfig is a configurable ConfigManager for tests.
type MockConfig struct {
	Server      types.ServerConfig
	Auth        types.AuthConfig
	Performance types.PerformanceConfig
	Log         types.LogConfig
	Database    types.DatabaseConfig
	Provider    types.ProviderConfig
	Bot         types.BotConfig
	RedisDSN    string
}

// NewMockConfig returns a MockConfig with test-friendly defaults.
func NewMockConfig() *MockConfig {
	return &MockConfig{
		Server: types.ServerConfig{
			Port: 5000, Host: "127.0.0.1",
			ReadTimeout: 60, WriteTimeout: 120, IdleTimeout: 120,
			GracefulShutdownTimeout: 10,
		},
		Auth: types.AuthConfig{
			ChannelSecret:      "test-secret",
			ChannelAccessToken: "test-token",
		},
		Performance: types.PerformanceConfig{
			MaxConcurrentRequests:     100,
			MaxConcurrentTranslations: 4,
		},
		Log:      types.LogConfig{Level: "info", Format: "text"},
		Database: types.DatabaseConfig{DSN: ":memory:"},
		Provider: types.ProviderConfig{
			GoogleBaseURL: "https://translate.googleapis.com",
			DeepLBaseURL:  "https://api-free.deepl.com",
		},
		Bot: types.BotConfig{
			DefaultLanguages:  []string{"zh-TW"},
			InactiveGroupDays: 20,
			MessageAPIBaseURL: "https://api.line.me",
		},
	}
}

func (m *MockConfig) GetAuthConfig() types.AuthConfig               { return m.Auth }
func (m *MockConfig) GetPerformanceConfig() types.PerformanceConfig { return m.Performance }
func (m *MockConfig) GetLogConfig() types.LogConfig                 { return m.Log }
func (m *MockConfig) GetDatabaseConfig() types.DatabaseConfig       { return m.Database }
func (m *MockConfig) GetProviderConfig() types.ProviderConfig       { return m.Provider }
func (m *MockConfig) GetBotConfig() types.BotConfig                 { return m.Bot }
func (m *MockConfig) GetRedisDSN() string                           { return m.RedisDSN }
func (m *MockConfig) GetEffectiveServerConfig() types.ServerConfig  { return m.Server }
func (m *MockConfig) Validate() error                               { return nil }
func (m *MockConfig) DisplayServerConfig()                          {}
