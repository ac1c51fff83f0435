package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvConfigPath       = "TINGLE_RADAR_CONFIG"
	EnvDatabasePath     = "TINGLE_RADAR_DB"
	EnvListenAddr       = "TINGLE_RADAR_ADDR"
	EnvBackfillSchedule = "TINGLE_RADAR_BACKFILL_SCHEDULE"
	EnvMaxPageSize      = "TINGLE_RADAR_MAX_PAGE_SIZE"
)

// LoadEnvFile loads variables from a .env file without overriding the
// process environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ConfigPath returns TINGLE_RADAR_CONFIG or the default path.
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	return GetDefaultConfigPath()
}

// ApplyEnv overrides cfg with any set environment variables.
func ApplyEnv(cfg *Config) error {
	cfg.applyDefaults()

	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v, ok := os.LookupEnv(EnvBackfillSchedule); ok {
		// Set but empty disables the job.
		cfg.Backfill.Schedule = v
	}
	if v := os.Getenv(EnvMaxPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &EnvError{Var: EnvMaxPageSize, Value: v, Err: err}
		}
		cfg.Browse.MaxPageSize = n
	}

	return Validate(cfg)
}
