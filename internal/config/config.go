package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Source SourceConfig
	DB     DBConfig
}

type ServerConfig struct {
	HTTPPort       string
	AllowedOrigins []string
}

type StoreConfig struct {
	Driver        string // redis, sqlite or memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	SQLitePath    string
}

type SourceConfig struct {
	Provider   string // opentdb, bank, file or generated
	Amount     int
	OpenTDBURL string
	Category   string
	Difficulty string
	Timeout    time.Duration
	File       string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:       getEnv("HTTP_PORT", "8080"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", "sqlite"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:        getEnv("STORE_PREFIX", "quiz-player:"),
			TTL:           getEnvAsDuration("STORE_TTL", 0),
			SQLitePath:    getEnv("SQLITE_PATH", "./quiz.db"),
		},
		Source: SourceConfig{
			Provider:   getEnv("QUESTION_PROVIDER", "opentdb"),
			Amount:     getEnvAsInt("QUESTION_AMOUNT", 10),
			OpenTDBURL: getEnv("OPENTDB_URL", "https://opentdb.com/api.php"),
			Category:   getEnv("OPENTDB_CATEGORY", ""),
			Difficulty: getEnv("OPENTDB_DIFFICULTY", ""),
			Timeout:    getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
			File:       getEnv("QUESTION_FILE", ""),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "quiz"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "quiz"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
