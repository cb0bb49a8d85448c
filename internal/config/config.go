package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	ServerPort  string
	DBDriver    string
	MySQLDSN    string
	PostgresDSN string
	SQLitePath  string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTExpiry time.Duration

	BraintreeEnvironment string
	BraintreeMerchantID  string
	BraintreePublicKey   string
	BraintreePrivateKey  string

	CORSOrigins  []string
	MaxPhotoSize int64
	SwaggerHost  string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "storefront.db"),
		ResetDB:     os.Getenv("RESET_DB") == "true",

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		BraintreeEnvironment: getEnv("BRAINTREE_ENVIRONMENT", "sandbox"),
		BraintreeMerchantID:  os.Getenv("BRAINTREE_MERCHANT_ID"),
		BraintreePublicKey:   os.Getenv("BRAINTREE_PUBLIC_KEY"),
		BraintreePrivateKey:  os.Getenv("BRAINTREE_PRIVATE_KEY"),

		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		MaxPhotoSize: int64(getEnvInt("MAX_PHOTO_SIZE", 1000000)),
		SwaggerHost:  os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DatabaseDSN returns the DSN for the configured driver.
func (c *Config) DatabaseDSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
