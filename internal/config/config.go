package config

import (
	"os"
	"strconv"
	"time"

	"hacplanner/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	AI       AIConfig       `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Planning PlanningConfig `validate:"required"`
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string `validate:"required"`
	Host    string
	Port    int
	Name    string
	User    string
	SSLMode string
}

// AIConfig holds LLM generation settings
type AIConfig struct {
	OpenAIKey   string `validate:"required"`
	OpenAIModel string `validate:"required"`
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// PlanningConfig holds plan generation settings
type PlanningConfig struct {
	Mode             string  `validate:"oneof=fast research"`
	Strict           bool
	QualityThreshold float64 `validate:"gte=0,lte=1"`
	BulkConcurrency  int     `validate:"gte=1"`
	PlansDir         string  `validate:"required"`
}

// PathConfig holds file system paths
type PathConfig struct {
	RosterFile string
	BatchesDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Server = *loadServerConfig()
	config.Planning = *loadPlanningConfig()
	config.Paths = *loadPathConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		Name:    getEnvOrDefault("DB_NAME", ""),
		User:    getEnvOrDefault("DB_USER", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadAIConfig() (*AIConfig, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is required")
	}

	return &AIConfig{
		OpenAIKey:   openaiKey,
		OpenAIModel: getEnvOrDefault("LLM_MODEL", "gpt-4o"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 4000),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadPlanningConfig() *PlanningConfig {
	return &PlanningConfig{
		Mode:             getEnvOrDefault("PLANNING_MODE", "fast"),
		Strict:           getEnvBoolOrDefault("PLANNING_STRICT", false),
		QualityThreshold: getEnvFloatOrDefault("QUALITY_THRESHOLD", 0.70),
		BulkConcurrency:  getEnvIntOrDefault("BULK_CONCURRENCY", 4),
		PlansDir:         getEnvOrDefault("PLANS_DIR", "./plans"),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		RosterFile: getEnvOrDefault("ROSTER_FILE", ""),
		BatchesDir: getEnvOrDefault("BATCHES_DIR", "./eval_batches"),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.AI.OpenAIKey == "" {
		return errors.ConfigInvalid("OpenAI API key is required")
	}
	if config.Planning.Mode != "fast" && config.Planning.Mode != "research" {
		return errors.ConfigInvalid("PLANNING_MODE must be fast or research")
	}
	if config.Planning.QualityThreshold < 0 || config.Planning.QualityThreshold > 1 {
		return errors.ConfigInvalid("QUALITY_THRESHOLD must be in [0,1]")
	}
	if config.Planning.BulkConcurrency < 1 {
		return errors.ConfigInvalid("BULK_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
