/*
Package storage provides SQLite database migrations and helper functions.

This file contains schema definitions, migration logic, and the JSON and time
encodings shared by the storage layer.
*/
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// timeLayout is fixed-width so that text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05Z"

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return errNotOpen
	}

	// Create migrations table
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	// Get current version
	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	// Run migrations in order
	migrations := []migration{
		{version: 1, name: "initial_catalog", up: s.migration001InitialCatalog},
		{version: 2, name: "video_tag_votes", up: s.migration002VideoTagVotes},
		{version: 3, name: "computed_tags", up: s.migration003ComputedTags},
		{version: 4, name: "creator_watchlist", up: s.migration004CreatorWatchlist},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"
	row := s.db.QueryRow(query)

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	query := "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	_, err := s.db.Exec(query, version, name)
	return err
}

// execAll runs statements in order, naming the failing one.
func (s *SQLiteStorage) execAll(steps []migrationStep) error {
	for _, step := range steps {
		if _, err := s.db.Exec(step.sql); err != nil {
			return fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}
	return nil
}

type migrationStep struct {
	what string
	sql  string
}

// migration001InitialCatalog creates the videos and ranking tables.
func (s *SQLiteStorage) migration001InitialCatalog() error {
	return s.execAll([]migrationStep{
		{"create videos table", `
			CREATE TABLE IF NOT EXISTS videos (
				youtube_id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT,
				channel_title TEXT NOT NULL,
				channel_id TEXT NOT NULL,
				published_at TEXT NOT NULL,
				view_count INTEGER NOT NULL DEFAULT 0,
				like_count INTEGER NOT NULL DEFAULT 0,
				duration INTEGER,
				tags TEXT,
				thumbnail_url TEXT,
				is_active INTEGER NOT NULL DEFAULT 1
			)
		`},
		{"create videos channel index", `
			CREATE INDEX IF NOT EXISTS idx_videos_channel ON videos(channel_id)
		`},
		{"create videos published index", `
			CREATE INDEX IF NOT EXISTS idx_videos_published ON videos(published_at DESC)
		`},
		{"create ranking_lists table", `
			CREATE TABLE IF NOT EXISTS ranking_lists (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT,
				created_at TEXT NOT NULL
			)
		`},
		{"create ranking_items table", `
			CREATE TABLE IF NOT EXISTS ranking_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				ranking_list_id INTEGER NOT NULL REFERENCES ranking_lists(id),
				video_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				score INTEGER
			)
		`},
		{"create ranking_items list index", `
			CREATE INDEX IF NOT EXISTS idx_ranking_items_list ON ranking_items(ranking_list_id, position)
		`},
	})
}

// migration002VideoTagVotes creates the vote ledger.
func (s *SQLiteStorage) migration002VideoTagVotes() error {
	return s.execAll([]migrationStep{
		{"create video_tag_votes table", `
			CREATE TABLE IF NOT EXISTS video_tag_votes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				video_id TEXT NOT NULL,
				tag TEXT NOT NULL,
				user_fingerprint TEXT NOT NULL,
				vote INTEGER NOT NULL CHECK (vote IN (-1, 1)),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CONSTRAINT uq_video_tag_user UNIQUE (video_id, tag, user_fingerprint)
			)
		`},
		{"create video_tag_votes video index", `
			CREATE INDEX IF NOT EXISTS idx_video_tag_votes_video ON video_tag_votes(video_id)
		`},
		{"create video_tag_votes tag index", `
			CREATE INDEX IF NOT EXISTS idx_video_tag_votes_tag ON video_tag_votes(tag)
		`},
	})
}

// migration003ComputedTags adds the classifier output cache column.
func (s *SQLiteStorage) migration003ComputedTags() error {
	return s.execAll([]migrationStep{
		{"add computed_tags column", `ALTER TABLE videos ADD COLUMN computed_tags TEXT`},
	})
}

// migration004CreatorWatchlist creates the creator watchlist.
func (s *SQLiteStorage) migration004CreatorWatchlist() error {
	return s.execAll([]migrationStep{
		{"create creator_watchlist table", `
			CREATE TABLE IF NOT EXISTS creator_watchlist (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				channel_id TEXT NOT NULL UNIQUE,
				channel_title TEXT NOT NULL,
				note TEXT,
				priority INTEGER NOT NULL DEFAULT 1,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`},
	})
}

// tagsToJSON encodes a string list for a JSON text column. A nil list is
// stored as NULL so that "not computed" stays distinct from "no tags".
func tagsToJSON(tags []string) sql.NullString {
	if tags == nil {
		return sql.NullString{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		log.Printf("Warning: failed to marshal tags: %v", err)
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// jsonToTags decodes a JSON text column; NULL yields nil.
func jsonToTags(col sql.NullString) ([]string, error) {
	if !col.Valid {
		return nil, nil
	}
	tags := []string{}
	if err := json.Unmarshal([]byte(col.String), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
