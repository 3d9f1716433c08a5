package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	MinioCfg    MinioConfig
	WeatherCfg  WeatherConfig
	ClaimCfg    ClaimConfig
	PartyCfg    PartyConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    string
}

// WeatherConfig configures the historical weather provider used by the oracle.
type WeatherConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// ClaimConfig controls the automatic-claim evaluation cycle.
type ClaimConfig struct {
	RecheckInterval time.Duration
	SchedulerSpec   string
}

// PartyConfig names the parties whose signatures transitions require.
type PartyConfig struct {
	ProviderName  string
	RegulatorName string
	OracleName    string
}

func New() *Config {
	return &Config{
		Port: getEnvOrDefault("PORT", "8087"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "insurance_ledger"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "guest"),
			Password: getEnvOrDefault("RABBITMQ_PASSWORD", "guest"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_URL", "http://localhost:9000"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		WeatherCfg: WeatherConfig{
			BaseURL:  getEnvOrDefault("WEATHER_API_URL", "https://api.worldweatheronline.com/premium/v1/past-weather.ashx"),
			APIKey:   getEnvOrDefault("WEATHER_API_KEY", ""),
			Timeout:  getEnvDuration("WEATHER_API_TIMEOUT", 10*time.Second),
			CacheTTL: getEnvDuration("WEATHER_CACHE_TTL", 6*time.Hour),
		},
		ClaimCfg: ClaimConfig{
			RecheckInterval: getEnvDuration("CLAIM_RECHECK_INTERVAL", 24*time.Hour),
			SchedulerSpec:   getEnvOrDefault("CLAIM_SCHEDULER_SPEC", "@every 1m"),
		},
		PartyCfg: PartyConfig{
			ProviderName:  getEnvOrDefault("PARTY_PROVIDER", "InsureCo"),
			RegulatorName: getEnvOrDefault("PARTY_REGULATOR", "GovtRegulator"),
			OracleName:    getEnvOrDefault("PARTY_ORACLE", "WeatherOracle"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
