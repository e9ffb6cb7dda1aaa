package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	StoreDriverSQLite     = "sqlite"
	StoreDriverClickHouse = "clickhouse"
)

var DefaultKeywords = []string{"hiring", "job opening", "we're hiring", "remote job"}

type Config struct {
	AppEnv   string `validate:"oneof=development production"`
	LogLevel string `validate:"oneof=debug info warn error"`

	// BearerToken may be empty; the search client reports it at run time.
	BearerToken       string
	TwitterAPIBaseURL string        `validate:"required,url"`
	TwitterAPITimeout time.Duration `validate:"gt=0"`

	SearchKeywords    []string `validate:"min=1,dive,required"`
	SearchMaxResults  int      `validate:"min=10,max=100"`
	SearchTweetFields string

	StoreDriver  string `validate:"oneof=sqlite clickhouse"`
	DatabasePath string `validate:"required_if=StoreDriver sqlite"`

	ClickHouseDSN          string `validate:"required_if=StoreDriver clickhouse"`
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// CacheTTL of zero disables response caching.
	CacheTTL      time.Duration `validate:"gte=0"`

	NATSURL         string
	NATSConnTimeout time.Duration

	OTelCollectorURL string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		AppEnv:   getEnvString("APP_ENV", "production"),
		LogLevel: strings.ToLower(getEnvString("LOG_LEVEL", "info")),

		BearerToken:       getEnvString("TWITTER_BEARER_TOKEN", ""),
		TwitterAPIBaseURL: getEnvString("TWITTER_API_BASE_URL", "https://api.twitter.com/2"),
		TwitterAPITimeout: getEnvDuration("TWITTER_API_TIMEOUT", 10*time.Second),

		SearchKeywords:    getEnvList("SEARCH_KEYWORDS", DefaultKeywords),
		SearchMaxResults:  getEnvInt("SEARCH_MAX_RESULTS", 10),
		SearchTweetFields: getEnvString("SEARCH_TWEET_FIELDS", "created_at,author_id,public_metrics"),

		StoreDriver:  getEnvString("STORE_DRIVER", StoreDriverSQLite),
		DatabasePath: getEnvString("DATABASE_PATH", "jobs.db"),

		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "hirefeed"),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 0),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		OTelCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blank entries.
func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return append([]string(nil), defaultValue...)
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
