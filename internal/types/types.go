package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetAuthConfig() AuthConfig
	GetPerformanceConfig() PerformanceConfig
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetProviderConfig() ProviderConfig
	GetBotConfig() BotConfig
	GetRedisDSN() string
	GetEffectiveServerConfig() ServerConfig
	Validate() error
	DisplayServerConfig()
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// AuthConfig holds the chat-platform webhook credentials.
// ChannelSecret signs inbound webhook bodies; ChannelAccessToken
// authenticates outbound reply/push calls.
type AuthConfig struct {
	ChannelSecret      string `json:"channel_secret"`
	ChannelAccessToken string `json:"channel_access_token"`
}

// PerformanceConfig represents performance configuration
type PerformanceConfig struct {
	MaxConcurrentRequests     int `json:"max_concurrent_requests"`
	MaxConcurrentTranslations int `json:"max_concurrent_translations"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// ProviderConfig holds translation provider credentials and endpoints.
type ProviderConfig struct {
	GoogleBaseURL string `json:"google_base_url"`
	DeepLAPIKey   string `json:"deepl_api_key"`
	DeepLBaseURL  string `json:"deepl_base_url"`
}

// BotConfig holds bot behavior settings.
type BotConfig struct {
	DefaultLanguages  []string `json:"default_languages"`
	InactiveGroupDays int      `json:"inactive_group_days"`
	MasterUserIDs     []string `json:"master_user_ids"`
	MessageAPIBaseURL string   `json:"message_api_base_url"`
}
