// Package config loads runtime settings from the environment (and an
// optional .env file) through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"recipebox/internal/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort string

	DBDriver    string
	DatabaseDSN string

	SecretKey   string
	TokenTTL    time.Duration
	BcryptCost  int
	RequireAuth bool

	GoogleAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	CaptionTimeout time.Duration

	RabbitMQURL string

	LogLevel  string
	LogFormat string

	BodyLimit   int
	CORSOrigins string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "recipebox.db")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("REQUIRE_AUTH", false)
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("CAPTION_TIMEOUT", "60s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("BODY_LIMIT", 32*1024*1024)
	v.SetDefault("CORS_ORIGINS", "*")
}

// Load reads an optional .env file and then the environment into a Config.
// It does not validate; call Validate before serving.
func Load(v *viper.Viper) Config {
	_ = godotenv.Load() // .env is optional

	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:        v.GetString("APP_PORT"),
		DBDriver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SecretKey:      v.GetString("SECRET_KEY"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		RequireAuth:    v.GetBool("REQUIRE_AUTH"),
		GoogleAPIKey:   v.GetString("GOOGLE_API_KEY"),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:  strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		CaptionTimeout: v.GetDuration("CAPTION_TIMEOUT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		BodyLimit:      v.GetInt("BODY_LIMIT"),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
	}
}

// Validate reports settings the server cannot run without.
func (c Config) Validate() error {
	var problems []string

	if c.SecretKey == "" {
		problems = append(problems, "SECRET_KEY is required")
	}
	if c.GoogleAPIKey == "" {
		problems = append(problems, "GOOGLE_API_KEY is required")
	}
	if err := c.ValidateDatabase(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.CaptionTimeout <= 0 {
		problems = append(problems, "CAPTION_TIMEOUT must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.BodyLimit <= 0 {
		problems = append(problems, "BODY_LIMIT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateDatabase checks only the storage settings, for commands that
// never serve HTTP.
func (c Config) ValidateDatabase() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported (use sqlite or postgres)", c.DBDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	return nil
}
