package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var errSyntax = errors.New("JSON parse error")

// LoadFrom reads and validates the config at path. Missing settings take
// their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &ConfigNotFoundError{Path: path}
	case errors.Is(err, fs.ErrPermission):
		return nil, &PermissionError{Path: path, Op: "read", Mode: fileMode(path), Err: err}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := decode(data)
	if err != nil {
		hint := "Fix the setting or remove it to use the default"
		if errors.Is(err, errSyntax) {
			hint = "Restore from .bak file if available"
		}
		return nil, &InvalidConfigError{Path: path, Err: err, Hint: hint}
	}
	return cfg, nil
}

// decode parses data, fills defaults, and validates the result.
func decode(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errSyntax, err)
	}

	cfg.applyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fileMode returns the permission bits of path, or zero.
func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Mode()
}
