package config

import (
	"os"
	"strconv"
	"time"
)

const DefaultAccountID = "dev-account"

type Config struct {
	ServerPort      int           `json:"server_port"`
	DatabaseURL     string        `json:"database_url"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
	RateLimitMax    int           `json:"rate_limit_max"`

	// DevAPIKey maps to DevGameID when no database is configured. It is a
	// local-development convenience and is never consulted once persistent
	// storage exists.
	DevAPIKey string `json:"dev_api_key"`
	DevGameID string `json:"dev_game_id"`

	// DashboardToken empty means every dashboard caller is accepted as
	// DashboardAccountID. That open mode is for local development only.
	DashboardToken     string `json:"dashboard_token"`
	DashboardAccountID string `json:"dashboard_account_id"`

	BetaAccessRequired bool `json:"beta_access_required"`
}

func Load() (*Config, error) {
	serverPort, _ := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if serverPort == 0 {
		serverPort = 4000
	}

	rateLimitWindow := getEnvDurationWithDefault("RATE_LIMIT_WINDOW", time.Minute)

	rateLimitMax, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX"))
	if rateLimitMax == 0 {
		rateLimitMax = 30
	}

	accountID := os.Getenv("DASHBOARD_ACCOUNT_ID")
	if accountID == "" {
		accountID = DefaultAccountID
	}

	betaRequired := os.Getenv("BETA_ACCESS_REQUIRED")

	return &Config{
		ServerPort:         serverPort,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RateLimitWindow:    rateLimitWindow,
		RateLimitMax:       rateLimitMax,
		DevAPIKey:          os.Getenv("DEV_API_KEY"),
		DevGameID:          os.Getenv("DEV_GAME_ID"),
		DashboardToken:     os.Getenv("DASHBOARD_TOKEN"),
		DashboardAccountID: accountID,
		BetaAccessRequired: betaRequired == "true" || betaRequired == "1",
	}, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
