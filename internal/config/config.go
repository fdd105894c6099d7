package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	baseURLEnv      = "PRM_API_BASE_URL"
	pollIntervalEnv = "PRM_POLL_INTERVAL"
	stateDBEnv      = "PRM_STATE_DB"
	logFileEnv      = "PRM_LOG_FILE"

	defaultBaseURL      = "https://localhost:7268/api"
	defaultPollInterval = 30 * time.Second
	defaultStateDB      = "pr-manager-state.db"
	defaultLogFile      = "pr-manager.log"
)

type Config struct {
	BaseURL      string
	PollInterval time.Duration
	StateDBPath  string
	LogFilePath  string
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:      defaultBaseURL,
		PollInterval: defaultPollInterval,
		StateDBPath:  defaultStateDB,
		LogFilePath:  defaultLogFile,
	}
	if v := os.Getenv(baseURLEnv); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(pollIntervalEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv(stateDBEnv); v != "" {
		cfg.StateDBPath = v
	}
	if v := os.Getenv(logFileEnv); v != "" {
		cfg.LogFilePath = v
	}
	return cfg
}

// IsLocalDev reports whether the configured backend is a local instance.
func (c Config) IsLocalDev() bool {
	return strings.Contains(c.BaseURL, "localhost") || strings.Contains(c.BaseURL, "127.0.0.1")
}
