package config

import "fmt"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Search   SearchConfig   `mapstructure:"search"`
	Database DatabaseConfig `mapstructure:"database"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

// GenAIConfig points at an OpenAI-compatible chat-completions endpoint
// (base URL without the /v1/chat/completions suffix).
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type SearchConfig struct {
	Provider   string `mapstructure:"provider"` // "duckduckgo" or "elasticsearch"
	BaseURL    string `mapstructure:"base_url"`
	Index      string `mapstructure:"index"` // elasticsearch knowledge index
	MaxResults int    `mapstructure:"max_results"`
	TopK       int    `mapstructure:"top_k"`
	Timeout    int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL   int    `mapstructure:"cache_ttl"` // seconds, 0 disables the answer cache
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AWSConfig struct {
	Region        string `mapstructure:"region"`
	SenderEmail   string `mapstructure:"sender_email"`
	AlertTopicARN string `mapstructure:"alert_topic_arn"`
	ReplyEnabled  bool   `mapstructure:"reply_enabled"`
}

type WorkflowConfig struct {
	StageTimeout   int    `mapstructure:"stage_timeout"` // milliseconds, per external call
	ReplySignature string `mapstructure:"reply_signature"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
