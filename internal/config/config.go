package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPort             = 5000
	DefaultSessionTTL       = 10 * time.Minute
	DefaultRefreshThreshold = 2 * time.Minute
	DefaultSweepInterval    = time.Minute
	DefaultTokenIssuer      = "storefront"
	DefaultBcryptCost       = 12
	DefaultCorsOrigins      = "http://localhost:5173"
	DefaultMigrationsPath   = "migrations"
	DefaultRedisAddr        = "localhost:6379"
	StorageDriverPostgres   = "postgres"
	StorageDriverMemory     = "memory"
	SessionStorePostgres    = "postgres"
	SessionStoreRedis       = "redis"
	SessionStoreMemory      = "memory"
)

type Config struct {
	Server   ServerConfig   `validate:"required"`
	Database DatabaseConfig `validate:"required"`
	Redis    RedisConfig
	Auth     AuthConfig `validate:"required"`
}

type ServerConfig struct {
	Env         string `validate:"required,oneof=development staging production test"`
	Host        string `validate:"required"`
	Port        int    `validate:"required,min=1,max=65535"`
	LogLevel    string `validate:"required,oneof=debug info warn error"`
	CorsOrigins string
}

type DatabaseConfig struct {
	Driver         string `validate:"required,oneof=postgres memory"`
	URL            string `validate:"required_if=Driver postgres"`
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret        string        `validate:"required,min=32"`
	TokenIssuer      string        `validate:"required"`
	SessionTTL       time.Duration `validate:"required,gt=0"`
	RefreshThreshold time.Duration `validate:"required,gt=0,ltfield=SessionTTL"`
	SweepInterval    time.Duration `validate:"required,gt=0"`
	SessionStore     string        `validate:"required,oneof=postgres redis memory"`
	BcryptCost       int           `validate:"min=4,max=31"`
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Env:         getEnv("APP_ENV", "development"),
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnvInt("PORT", DefaultPort),
			LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
			CorsOrigins: getEnv("CORS_ORIGINS", DefaultCorsOrigins),
		},
		Database: DatabaseConfig{
			Driver:         getEnv("STORAGE_DRIVER", StorageDriverPostgres),
			URL:            getEnv("DATABASE_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", DefaultMigrationsPath),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", DefaultRedisAddr),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			TokenIssuer:      getEnv("TOKEN_ISSUER", DefaultTokenIssuer),
			SessionTTL:       getEnvDuration("SESSION_TTL", DefaultSessionTTL),
			RefreshThreshold: getEnvDuration("SESSION_REFRESH_THRESHOLD", DefaultRefreshThreshold),
			SweepInterval:    getEnvDuration("SESSION_SWEEP_INTERVAL", DefaultSweepInterval),
			SessionStore:     getEnv("SESSION_STORE", SessionStorePostgres),
			BcryptCost:       getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		},
	}
}

// Validate rejects configurations the service must not start with, most
// importantly a missing or short JWT_SECRET.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Auth.SessionStore == SessionStorePostgres && c.Database.Driver != StorageDriverPostgres {
		return errors.New("invalid configuration: SESSION_STORE=postgres requires STORAGE_DRIVER=postgres")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

var envNames = map[string]string{
	"Config.Auth.JWTSecret":        "JWT_SECRET",
	"Config.Auth.TokenIssuer":      "TOKEN_ISSUER",
	"Config.Auth.SessionTTL":       "SESSION_TTL",
	"Config.Auth.RefreshThreshold": "SESSION_REFRESH_THRESHOLD",
	"Config.Auth.SweepInterval":    "SESSION_SWEEP_INTERVAL",
	"Config.Auth.SessionStore":     "SESSION_STORE",
	"Config.Auth.BcryptCost":       "BCRYPT_COST",
	"Config.Database.Driver":       "STORAGE_DRIVER",
	"Config.Database.URL":          "DATABASE_URL",
	"Config.Server.Env":            "APP_ENV",
	"Config.Server.Port":           "PORT",
	"Config.Server.LogLevel":       "LOG_LEVEL",
	"Config.Redis.DB":              "REDIS_DB",
}

func describe(fe validator.FieldError) string {
	name, ok := envNames[fe.Namespace()]
	if !ok {
		name = fe.Namespace()
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", name, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", name, fe.Tag())
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "10m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
