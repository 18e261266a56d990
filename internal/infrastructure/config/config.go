package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Instagram  InstagramConfig  `mapstructure:"instagram"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Collection CollectionConfig `mapstructure:"collection"`
	LogLevel   string           `mapstructure:"log_level"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig holds language-model API settings.
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InstagramConfig holds Instagram RapidAPI settings.
type InstagramConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	Host    string        `mapstructure:"host"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds recipe cache and AI response cache settings.
type CacheConfig struct {
	RecipeTTLDays int           `mapstructure:"recipe_ttl_days"`
	RedisEnabled  bool          `mapstructure:"redis_enabled"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	ResponseTTL   time.Duration `mapstructure:"response_ttl"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
}

// RateLimitConfig holds API rate limiting settings.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CollectionConfig holds recipe collection pipeline policy knobs.
type CollectionConfig struct {
	QueriesPerCreator int `mapstructure:"queries_per_creator"`
	GeneralQueries    int `mapstructure:"general_queries"`
	CreatorResults    int `mapstructure:"creator_results"`
	QueryResults      int `mapstructure:"query_results"`
	PlatformCap       int `mapstructure:"platform_cap"`
}

// LoadConfig reads configuration from the environment and .env file.
func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	viper.BindEnv("youtube.enabled", "ENABLE_YOUTUBE_SOURCE")
	viper.BindEnv("instagram.api_key", "INSTAGRAM_RAPIDAPI_KEY")
	viper.BindEnv("instagram.enabled", "ENABLE_INSTAGRAM_SOURCE")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET_KEY")
	viper.BindEnv("cache.redis_enabled", "CACHE_REDIS_ENABLED")
	viper.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey masks an API key, keeping only the first and last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "0.1.0")
	viper.SetDefault("app.name", "meal-planner")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	viper.SetDefault("openrouter.max_tokens", 2048)
	viper.SetDefault("openrouter.timeout", "60s")

	viper.SetDefault("youtube.enabled", true)
	viper.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	viper.SetDefault("youtube.timeout", "30s")

	viper.SetDefault("instagram.enabled", true)
	viper.SetDefault("instagram.host", "instagram-scraper-api2.p.rapidapi.com")
	viper.SetDefault("instagram.base_url", "https://instagram-scraper-api2.p.rapidapi.com")
	viper.SetDefault("instagram.timeout", "30s")

	viper.SetDefault("cache.recipe_ttl_days", 30)
	viper.SetDefault("cache.redis_enabled", false)
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.response_ttl", "24h")

	viper.SetDefault("auth.jwt_secret", "dev-secret-key-change-in-production")
	viper.SetDefault("auth.token_lifetime", "30m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("collection.queries_per_creator", 3)
	viper.SetDefault("collection.general_queries", 5)
	viper.SetDefault("collection.creator_results", 5)
	viper.SetDefault("collection.query_results", 8)
	viper.SetDefault("collection.platform_cap", 40)
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// At least one content source must be enabled.
	if !config.YouTube.Enabled && !config.Instagram.Enabled {
		return fmt.Errorf("at least one recipe source must be enabled")
	}

	if config.Cache.RecipeTTLDays <= 0 {
		return fmt.Errorf("invalid recipe cache ttl")
	}

	if config.Collection.GeneralQueries <= 0 || config.Collection.PlatformCap <= 0 {
		return fmt.Errorf("invalid collection settings")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit settings")
		}
	}

	return nil
}
