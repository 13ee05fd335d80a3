package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for streamsynth-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"5002"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// StaticDir is the directory the management page is served from.
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR" env-default:"./static"`

	// Streaming engine (Timeplus/Proton) connection
	Timeplus TimeplusConfig `yaml:"timeplus"`

	// Kafka sink settings used when deriving external stream DDL
	Kafka KafkaConfig `yaml:"kafka"`

	// Text-generation provider configuration
	AI AIConfig `yaml:"ai"`

	// Pipeline metadata persistence
	Metadata MetadataConfig `yaml:"metadata"`
}

// TimeplusConfig holds streaming engine connection and startup-gate settings.
type TimeplusConfig struct {
	Host     string `yaml:"host" env:"TIMEPLUS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"TIMEPLUS_PORT" env-default:"8463"`
	User     string `yaml:"user" env:"TIMEPLUS_USER" env-default:"default"`
	Password string `yaml:"-" env:"TIMEPLUS_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"TIMEPLUS_DATABASE" env-default:"default"`

	// MaxAttempts is how many times the startup connectivity guard probes
	// the engine before giving up.
	MaxAttempts int `yaml:"max_attempts" env:"TIMEPLUS_MAX_ATTEMPTS" env-default:"30"`
	// RetryDelaySeconds is the fixed delay between guard attempts.
	RetryDelaySeconds int `yaml:"retry_delay_seconds" env:"TIMEPLUS_RETRY_DELAY_SECONDS" env-default:"2"`
}

// Addr returns the engine endpoint in host:port form.
func (c *TimeplusConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RetryDelay returns the guard delay as a duration.
func (c *TimeplusConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// KafkaConfig holds the broker settings baked into sink stream DDL.
type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
}

// AIProvider identifies a text-generation backend.
type AIProvider string

const (
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds text-generation provider settings.
type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Model    string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
	BaseURL  string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey   string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML

	// Anthropic settings used when provider is "anthropic".
	AnthropicModel  string `yaml:"anthropic_model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-5-20250929"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// MetadataBackend selects a pipeline metadata store implementation.
type MetadataBackend string

const (
	BackendSQLite        MetadataBackend = "sqlite"
	BackendMutableStream MetadataBackend = "mutable_stream"
)

// MetadataConfig holds pipeline metadata persistence settings.
type MetadataConfig struct {
	Backend    string `yaml:"backend" env:"METADATA_STORAGE" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_DB_PATH" env-default:"pipelines.db"`
	// StreamName is the mutable stream holding metadata in mutable_stream mode.
	StreamName string `yaml:"stream_name" env:"METADATA_STREAM_NAME" env-default:"synthetic_data_pipelines"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml is absent the environment alone is used.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch MetadataBackend(strings.ToLower(c.Metadata.Backend)) {
	case BackendSQLite, BackendMutableStream:
	default:
		return fmt.Errorf("unknown metadata backend %q (want %q or %q)",
			c.Metadata.Backend, BackendSQLite, BackendMutableStream)
	}

	switch AIProvider(strings.ToLower(c.AI.Provider)) {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown AI provider %q (want %q or %q)",
			c.AI.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	if c.Timeplus.MaxAttempts < 1 {
		return fmt.Errorf("timeplus max_attempts must be at least 1, got %d", c.Timeplus.MaxAttempts)
	}

	return nil
}

// MetadataBackend returns the normalized metadata backend selection.
func (c *Config) MetadataBackend() MetadataBackend {
	return MetadataBackend(strings.ToLower(c.Metadata.Backend))
}

// AIProvider returns the normalized text-generation provider selection.
func (c *Config) AIProvider() AIProvider {
	return AIProvider(strings.ToLower(c.AI.Provider))
}
