package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`

	// Ollama runtime
	OllamaHost  string `yaml:"ollama_host"`
	OllamaModel string `yaml:"ollama_model"`

	// Synthetic dataset
	ResourceCount int   `yaml:"resource_count"`
	DatasetSeed   int64 `yaml:"dataset_seed"`

	// Search and agent behavior
	NLResultCap     int `yaml:"nl_result_cap"`
	AgentTimeoutSec int `yaml:"agent_timeout_sec"`

	// Cache configuration
	CacheProvider   string `yaml:"cache_provider"`
	RedisAddr       string `yaml:"redis_addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	// HTTP surface
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	EnableMetrics      bool   `yaml:"enable_metrics"`
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`

	// Agent audit trail
	AgentLogPath string `yaml:"agent_log_path"`
}

// LoadConfig loads configuration in three layers: built-in defaults, then an
// optional YAML file named by CONFIG_FILE, then environment variables. Later
// layers win.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Port:        8000,
		LogLevel:    "info",

		OllamaHost:  "http://localhost:11434",
		OllamaModel: "gpt-oss:20b",

		ResourceCount: 100,
		DatasetSeed:   42,

		NLResultCap:     5,
		AgentTimeoutSec: 5,

		CacheProvider:   "memory",
		RedisAddr:       "localhost:6379",
		CacheTTLSeconds: 300,

		RateLimitPerMinute: 60,
		EnableMetrics:      true,
		CORSAllowedOrigins: "*",

		AgentLogPath: "logs/agent_actions.jsonl",
	}
}

// applyFile overlays values from a YAML file. Fields absent from the file
// keep their current values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays values from environment variables. Unset variables keep
// the current value.
func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.Port = getEnvInt("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)

	c.ResourceCount = getEnvInt("RESOURCE_COUNT", c.ResourceCount)
	c.DatasetSeed = getEnvInt64("DATASET_SEED", c.DatasetSeed)

	c.NLResultCap = getEnvInt("NL_RESULT_CAP", c.NLResultCap)
	c.AgentTimeoutSec = getEnvInt("AGENT_TIMEOUT_SEC", c.AgentTimeoutSec)

	c.CacheProvider = getEnv("CACHE_PROVIDER", c.CacheProvider)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.CacheTTLSeconds = getEnvInt("CACHE_TTL_SECONDS", c.CacheTTLSeconds)

	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)

	c.AgentLogPath = getEnv("AGENT_LOG_PATH", c.AgentLogPath)
}

// Validate checks if all required configuration is present and consistent
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.OllamaHost == "" {
		return fmt.Errorf("OLLAMA_HOST is required")
	}
	if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
		return fmt.Errorf("OLLAMA_HOST must be an http(s) URL, got %q", c.OllamaHost)
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("OLLAMA_MODEL is required")
	}
	if c.ResourceCount < 1 {
		return fmt.Errorf("RESOURCE_COUNT must be positive, got %d", c.ResourceCount)
	}
	if c.NLResultCap < 1 {
		return fmt.Errorf("NL_RESULT_CAP must be positive, got %d", c.NLResultCap)
	}
	if c.AgentTimeoutSec < 1 {
		return fmt.Errorf("AGENT_TIMEOUT_SEC must be positive, got %d", c.AgentTimeoutSec)
	}
	switch c.CacheProvider {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER=redis")
		}
	default:
		return fmt.Errorf("CACHE_PROVIDER must be memory or redis, got %q", c.CacheProvider)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative, got %d", c.CacheTTLSeconds)
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	if c.AgentLogPath == "" {
		return fmt.Errorf("AGENT_LOG_PATH is required")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AgentTimeout returns the agent deadline as a duration
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSec) * time.Second
}

// CacheTTL returns the cache entry lifetime as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AllowedOrigins splits the CORS origin list
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 gets a 64-bit integer environment variable with a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
