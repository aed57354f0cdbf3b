package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	TMDB      TMDBConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Sentiment SentimentConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Addr string
}

type DatasetConfig struct {
	CatalogPath    string
	ContentSimPath string
	CompanySimPath string
}

type TMDBConfig struct {
	APIKey string
}

type CacheConfig struct {
	TTL      time.Duration
	Capacity int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type SentimentConfig struct {
	GeminiAPIKey string
	OpenAIAPIKey string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Dataset: DatasetConfig{
			CatalogPath:    getEnv("DATASET_PATH", "datasets/main_df.csv"),
			ContentSimPath: getEnv("CONTENT_SIM_PATH", "models/cosine_sim.json"),
			CompanySimPath: getEnv("COMPANY_SIM_PATH", "models/cosine_sim_prod.json"),
		},
		TMDB: TMDBConfig{
			APIKey: getEnv("TMDB_API_KEY", ""),
		},
		Cache: CacheConfig{
			TTL:      time.Duration(getEnvInt("METADATA_CACHE_TTL_SECONDS", 600)) * time.Second,
			Capacity: getEnvInt("METADATA_CACHE_CAPACITY", 100),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Sentiment: SentimentConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.Dataset.CatalogPath == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	if c.Dataset.ContentSimPath == "" {
		return fmt.Errorf("CONTENT_SIM_PATH is required")
	}
	if c.Dataset.CompanySimPath == "" {
		return fmt.Errorf("COMPANY_SIM_PATH is required")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("METADATA_CACHE_CAPACITY must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
