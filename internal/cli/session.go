/*
Package cli implements the tingle-radar commands.

Every command that touches the catalog opens it through openSession, which
loads the config file, applies .env and environment overrides, and runs the
storage migrations.
*/
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/tingleradar/tingle-radar/internal/config"
	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/search"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// session bundles what a command needs to reach the catalog.
type session struct {
	cfg   *config.Config
	store *storage.SQLiteStorage
	index *search.Indexer
	svc   *radar.Service
}

// loadConfig reads the config file (defaults when missing) and applies
// environment overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("Warning: %v", err)
	}

	path, err := config.ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	return cfg, nil
}

// openSession opens the catalog. With withIndex the search index is created
// and filled from the catalog.
func openSession(withIndex bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return nil, err
	}
	var store *storage.SQLiteStorage
	if dbPath == "" {
		if store, err = storage.NewStorage(); err != nil {
			return nil, err
		}
	} else {
		store = storage.NewStorageAt(dbPath)
	}
	if err := store.Init(); err != nil {
		return nil, err
	}

	rt := &session{cfg: cfg, store: store}
	if withIndex {
		if rt.index, err = search.NewIndexer(); err != nil {
			store.Close()
			return nil, err
		}
	}

	rules := cfg.RuleTable()
	rt.svc = radar.NewService(store, radar.Options{
		Rules:       &rules,
		MaxPageSize: cfg.Browse.MaxPageSize,
		Index:       rt.index,
	})
	return rt, nil
}

// Close releases the index and the database.
func (rt *session) Close() {
	if rt.index != nil {
		if err := rt.index.Close(); err != nil {
			log.Printf("Warning: failed to close search index: %v", err)
		}
	}
	if err := rt.store.Close(); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
