package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromEnhancedErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "nonexistent.json")

		_, err := LoadFrom(testPath)
		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected ConfigNotFoundError, got %v", err)
		}
		if !strings.Contains(err.Error(), "tingle-radar config init") {
			t.Errorf("error should mention config init, got: %v", err)
		}
	})

	t.Run("permission denied", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}
		testPath := filepath.Join(t.TempDir(), "config.json")

		if err := os.WriteFile(testPath, []byte(`{}`), 0000); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := LoadFrom(testPath)
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
		if !strings.Contains(err.Error(), "chmod 644") {
			t.Errorf("error should suggest chmod fix, got: %v", err)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "config.json")

		if err := os.WriteFile(testPath, []byte(`{invalid`), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := LoadFrom(testPath)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %v", err)
		}
		if !strings.Contains(err.Error(), ".bak") {
			t.Errorf("error should suggest backup restore, got: %v", err)
		}
		if !errors.Is(err, errSyntax) {
			t.Errorf("error should wrap errSyntax, got: %v", err)
		}
	})

	t.Run("invalid setting", func(t *testing.T) {
		testPath := filepath.Join(t.TempDir(), "config.json")

		if err := os.WriteFile(testPath, []byte(`{"browse": {"maxPageSize": -5}}`), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := LoadFrom(testPath)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %v", err)
		}
		if !strings.Contains(invalid.Err.Error(), "maxPageSize") {
			t.Errorf("cause should name the setting, got: %v", invalid.Err)
		}
	})
}

func TestLoadFromFillsDefaults(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(testPath, []byte(`{"server": {"listenAddr": ":9000"}}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg, err := LoadFrom(testPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.VoteBurst != DefaultVoteBurst {
		t.Errorf("VoteBurst = %d, want default", cfg.Server.VoteBurst)
	}
	if cfg.Browse.DefaultPageSize != DefaultPageSize || cfg.Browse.MaxPageSize != DefaultMaxPageSize {
		t.Errorf("Browse = %+v", cfg.Browse)
	}
	if cfg.Backfill.Schedule != DefaultBackfillSchedule {
		t.Errorf("Schedule = %q", cfg.Backfill.Schedule)
	}
}

func TestLoadOrCreate(t *testing.T) {
	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}

	badPath := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(badPath, []byte(`nope`), 0644)
	if _, err := LoadOrCreate(badPath); err == nil {
		t.Error("LoadOrCreate should not hide parse errors")
	}
}
