package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Save validates cfg and writes it to path atomically. An existing file is
// copied to path+".bak" first.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// What lands on disk must load back.
	if _, err := decode(data); err != nil {
		return &InvalidConfigError{
			Path: path,
			Err:  err,
			Hint: "Check page sizes, schedule, and extra rules and try again",
		}
	}

	if err := checkWritable(path); err != nil {
		return err
	}

	if err := backupConfig(path); err != nil {
		log.Printf("Warning: failed to create backup: %v", err)
	}

	return atomicWrite(path, data)
}

func backupConfig(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", data, 0644)
}

// atomicWrite writes through a temp file in the same directory and renames
// it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// checkWritable probes the directory and any existing file at path.
func checkWritable(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		// atomicWrite creates it
		return nil
	}

	probe, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return &PermissionError{Path: dir, Op: "write", Mode: fileMode(dir), Err: err}
	}
	probe.Close()
	os.Remove(probe.Name())

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err == nil {
		f.Close()
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &PermissionError{Path: path, Op: "write", Mode: fileMode(path), Err: err}
}
