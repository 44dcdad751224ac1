package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads environment variables from .env unless GO_ENV points at a
// deployed environment that injects them directly.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

// Missing assistant credentials or a session secret make the service unable
// to do anything useful, so startup refuses instead of serving degraded.
var (
	ErrMissingAPIKey        = errors.New("OPENAI_API_KEY is not set")
	ErrMissingAssistantID   = errors.New("ASSISTANT_ID is not set")
	ErrMissingSessionSecret = errors.New("SESSION_SECRET is not set")
)

type EnvConfig struct {
	GO_ENV string
	PORT   int

	// Identity store (PostgreSQL)
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string

	// Assistant service
	OPENAI_API_KEY  string
	OPENAI_BASE_URL string
	ASSISTANT_ID    string

	// Session + API tokens
	SESSION_SECRET string
	JWT_SECRET     string
	JWT_ISSUER     string

	// Redis (login lockout); optional
	REDIS_URL string

	// Spaces upload archive; optional, archive disabled when unset
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_BUCKET     string
	SPACES_REGION     string
	SPACES_ENDPOINT   string

	// Remote file retention for the cleanup sweep
	FILE_RETENTION time.Duration

	ALLOWED_ORIGINS string
	LOG_FILE        string
}

func Get() (*EnvConfig, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	retention := 14 * 24 * time.Hour
	if days, err := strconv.Atoi(os.Getenv("FILE_RETENTION_DAYS")); err == nil && days > 0 {
		retention = time.Duration(days) * 24 * time.Hour
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "logs/app.log"
	}

	env := &EnvConfig{
		GO_ENV:       os.Getenv("GO_ENV"),
		PORT:         port,
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),

		OPENAI_API_KEY:  os.Getenv("OPENAI_API_KEY"),
		OPENAI_BASE_URL: os.Getenv("OPENAI_BASE_URL"),
		ASSISTANT_ID:    os.Getenv("ASSISTANT_ID"),

		SESSION_SECRET: os.Getenv("SESSION_SECRET"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		JWT_ISSUER:     os.Getenv("JWT_ISSUER"),

		REDIS_URL: os.Getenv("REDIS_URL"),

		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),

		FILE_RETENTION: retention,

		ALLOWED_ORIGINS: os.Getenv("ALLOWED_ORIGINS"),
		LOG_FILE:        logFile,
	}

	if env.JWT_ISSUER == "" {
		env.JWT_ISSUER = "doctor-virtual-api"
	}
	// Single-secret deployments sign API tokens with the session secret
	if env.JWT_SECRET == "" {
		env.JWT_SECRET = env.SESSION_SECRET
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return env, nil
}

// Validate checks the configuration the service cannot run without.
func (e *EnvConfig) Validate() error {
	if e.OPENAI_API_KEY == "" {
		return ErrMissingAPIKey
	}
	if e.ASSISTANT_ID == "" {
		return ErrMissingAssistantID
	}
	if e.SESSION_SECRET == "" {
		return ErrMissingSessionSecret
	}
	return nil
}

// SpacesConfigured reports whether the optional upload archive is usable.
func (e *EnvConfig) SpacesConfigured() bool {
	return e.SPACES_ACCESS_KEY != "" && e.SPACES_SECRET_KEY != "" && e.SPACES_BUCKET != ""
}
