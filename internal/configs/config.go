package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverFile     = "file"
)

// StorageConfig selects and configures the data gateway backend.
type StorageConfig struct {
	Driver   string
	URL      string // postgres only
	MaxConns int32
	DataFile string // file only; empty keeps data in memory
}

// RabbitMQConfig configures listing change events.
type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

// RedisConfig configures the search page cache.
type RedisConfig struct {
	Enabled bool
	URL     string
	TTL     time.Duration
}

// HTTPConfig configures the HTTP surface and its tokens.
type HTTPConfig struct {
	Addr      string
	JWTSecret string
	JWTTTL    time.Duration
}

// AdminConfig, when both fields are set, makes sure an admin profile exists
// at startup.
type AdminConfig struct {
	Email    string
	Password string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	Storage        StorageConfig
	RabbitMQ       RabbitMQConfig
	Redis          RedisConfig
	HTTP           HTTPConfig
	Admin          AdminConfig
	SearchPageSize int
	DefaultLocale  string
}

// LoadConfig reads the environment, after loading envPath (or ./.env) when
// it exists.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if len(envPath) > 0 && envPath[0] != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Println("Info: No .env file found, reading the process environment only.")
	}

	cfg := &AppConfig{
		Storage: StorageConfig{
			Driver:   strings.ToLower(getEnvAsString("STORAGE_DRIVER", StorageDriverPostgres)),
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getEnvAsInt("DATABASE_MAX_CONNS", 10)),
			DataFile: getEnvAsString("DATA_FILE", "data/rental.json"),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled: getEnvAsBool("EVENTS_ENABLED", false),
			URL:     os.Getenv("RABBITMQ_URL"),
		},
		Redis: RedisConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", false),
			URL:     getEnvAsString("REDIS_URL", "localhost:6379"),
			TTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		HTTP: HTTPConfig{
			Addr:      getEnvAsString("HTTP_ADDR", ":8080"),
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		SearchPageSize: getEnvAsInt("SEARCH_PAGE_SIZE", 12),
		DefaultLocale:  getEnvAsString("DEFAULT_LOCALE", "en"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Storage.URL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required when STORAGE_DRIVER=%s", StorageDriverPostgres)
		}
	case StorageDriverFile:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageDriverPostgres, StorageDriverFile, c.Storage.Driver)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required when EVENTS_ENABLED=true")
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.HTTP.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.HTTP.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.SearchPageSize < 1 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be at least 1, got %d", c.SearchPageSize)
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// getEnvAsString returns the variable or defaultValue when it is unset.
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt logs and falls back to defaultValue when the value is not an int.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration accepts time.ParseDuration syntax ("90s", "24h").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}
