/*
Package config handles loading, saving, and validating tingle-radar
configuration.

Configuration is stored in ~/.tingle-radar.json. Environment variables (and a
.env file in the working directory) override file values.

Schema:
  {
    "databasePath": "~/.tingle-radar/radar.db",
    "server": {
      "listenAddr": ":8080",
      "voteRatePerMinute": 30,
      "voteBurst": 10
    },
    "browse": {
      "defaultPageSize": 50,
      "maxPageSize": 100
    },
    "backfill": {
      "schedule": "@every 30m",
      "batchSize": 200
    },
    "extraRules": [
      {"tag": "tapping", "field": "title", "keywords": ["knock"]}
    ]
  }
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tingleradar/tingle-radar/internal/tagging"
)

// Config represents the root configuration structure.
type Config struct {
	// DatabasePath is the SQLite file. Empty means ~/.tingle-radar/radar.db.
	DatabasePath string `json:"databasePath,omitempty"`

	Server   *ServerSettings   `json:"server,omitempty"`
	Browse   *BrowseSettings   `json:"browse,omitempty"`
	Backfill *BackfillSettings `json:"backfill,omitempty"`

	// ExtraRules are appended to the built-in classifier rules.
	ExtraRules []RuleConfig `json:"extraRules,omitempty"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	ListenAddr string `json:"listenAddr,omitempty"`

	// VoteRatePerMinute and VoteBurst bound votes per fingerprint.
	VoteRatePerMinute float64 `json:"voteRatePerMinute,omitempty"`
	VoteBurst         int     `json:"voteBurst,omitempty"`
}

// BrowseSettings configures pagination.
type BrowseSettings struct {
	DefaultPageSize int `json:"defaultPageSize,omitempty"`
	MaxPageSize     int `json:"maxPageSize,omitempty"`
}

// BackfillSettings configures the background tag cache job in serve mode.
type BackfillSettings struct {
	// Schedule is a cron spec; empty disables the job.
	Schedule  string `json:"schedule,omitempty"`
	BatchSize int    `json:"batchSize,omitempty"`
}

// RuleConfig is one classifier rule supplied by the user.
type RuleConfig struct {
	Tag      string   `json:"tag"`
	Field    string   `json:"field,omitempty"`
	Keywords []string `json:"keywords"`

	// Scene rules also add the roleplay tag on match.
	Scene bool `json:"scene,omitempty"`
}

// Defaults applied to missing settings.
const (
	DefaultListenAddr        = ":8080"
	DefaultVoteRatePerMinute = 30
	DefaultVoteBurst         = 10
	DefaultPageSize          = 50
	DefaultMaxPageSize       = 100
	DefaultBackfillSchedule  = "@every 30m"
	DefaultBackfillBatch     = 200
)

// NewConfig creates a configuration with every default filled in.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.VoteRatePerMinute == 0 {
		c.Server.VoteRatePerMinute = DefaultVoteRatePerMinute
	}
	if c.Server.VoteBurst == 0 {
		c.Server.VoteBurst = DefaultVoteBurst
	}

	if c.Browse == nil {
		c.Browse = &BrowseSettings{}
	}
	if c.Browse.DefaultPageSize == 0 {
		c.Browse.DefaultPageSize = DefaultPageSize
	}
	if c.Browse.MaxPageSize == 0 {
		c.Browse.MaxPageSize = DefaultMaxPageSize
	}

	if c.Backfill == nil {
		c.Backfill = &BackfillSettings{Schedule: DefaultBackfillSchedule}
	}
	if c.Backfill.BatchSize == 0 {
		c.Backfill.BatchSize = DefaultBackfillBatch
	}
}

// GetDefaultConfigPath returns the path to ~/.tingle-radar.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tingle-radar.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrCreate reads the configuration at path, returning defaults when the
// file does not exist. Other errors are returned unchanged.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err == nil {
		return cfg, nil
	}

	var notFound *ConfigNotFoundError
	if errors.As(err, &notFound) {
		return NewConfig(), nil
	}
	return nil, err
}

// ResolveDatabasePath expands a leading ~ in DatabasePath. Empty stays empty.
func (c *Config) ResolveDatabasePath() (string, error) {
	path := c.DatabasePath
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

// RuleTable returns the built-in rules plus ExtraRules.
func (c *Config) RuleTable() tagging.RuleTable {
	table := tagging.DefaultRuleTable()
	for _, r := range c.ExtraRules {
		rule := tagging.Rule{
			Tag:      r.Tag,
			Field:    tagging.Field(r.Field),
			Keywords: lowerAll(r.Keywords),
		}
		if rule.Field == "" {
			rule.Field = tagging.FieldAll
		}
		if r.Scene {
			table.SceneRules = append(table.SceneRules, rule)
		} else {
			table.Rules = append(table.Rules, rule)
		}
	}
	return table
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
