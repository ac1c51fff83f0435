/*
Package storage implements the persistent store for the video catalog, tag
votes, ranking snapshots, and the creator watchlist.

The database defaults to ~/.tingle-radar/radar.db and uses modernc.org/sqlite
(a pure Go, CGo-free implementation).
*/
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested video or ranking does not exist.
var ErrNotFound = errors.New("not found")

// errNotOpen is returned by every operation before Init succeeds.
var errNotOpen = errors.New("storage not initialized")

// CatalogStore reads and writes video rows and their cached classifier tags.
type CatalogStore interface {
	// UpsertVideo inserts or updates a video. ComputedTags is left untouched
	// on update unless the incoming row carries a non-nil set.
	UpsertVideo(ctx context.Context, v Video) error

	// GetVideo returns a single video or ErrNotFound.
	GetVideo(ctx context.Context, id string) (*Video, error)

	// GetVideos returns the videos among ids that exist, keyed by id.
	GetVideos(ctx context.Context, ids []string) (map[string]Video, error)

	// ListVideos returns videos matching q in the requested order.
	ListVideos(ctx context.Context, q VideoQuery) ([]Video, error)

	// CountVideos counts videos matching q, ignoring Limit and Offset.
	CountVideos(ctx context.Context, q VideoQuery) (int, error)

	// SetComputedTags stores the classifier output cache for a video.
	SetComputedTags(ctx context.Context, id string, tags []string) error

	// ListUncachedVideos returns up to limit videos with no cached tags.
	ListUncachedVideos(ctx context.Context, limit int) ([]Video, error)

	// TopChannels returns the channels with the most videos.
	TopChannels(ctx context.Context, limit int) ([]ChannelCount, error)
}

// VoteStore persists one vote per (video, tag, fingerprint).
type VoteStore interface {
	// UpsertVote writes v, replacing any prior vote from the same
	// fingerprint on the same (video, tag), and returns the new aggregate.
	UpsertVote(ctx context.Context, v Vote) (int, error)

	// VoteScores returns the aggregate for every tag voted on for a video.
	VoteScores(ctx context.Context, videoID string) (map[string]int, error)

	// VoteScoresFor returns the aggregates of several videos keyed by video
	// id. Videos without votes are absent.
	VoteScoresFor(ctx context.Context, videoIDs []string) (map[string]map[string]int, error)
}

// RankingStore reads and appends ranking snapshots.
type RankingStore interface {
	// CreateRankingList stores a snapshot, upserting its videos in the same
	// transaction, and returns the new list id.
	CreateRankingList(ctx context.Context, list RankingList, videos []Video, entries []RankingEntry) (int64, error)

	// RecentRankingLists returns up to limit snapshots, newest first.
	RecentRankingLists(ctx context.Context, limit int) ([]RankingList, error)

	// RankingEntries returns up to limit entries of a snapshot by position.
	RankingEntries(ctx context.Context, listID int64, limit int) ([]RankingEntry, error)
}

// CreatorStore manages the channel watchlist.
type CreatorStore interface {
	UpsertCreator(ctx context.Context, c Creator) error
	ListCreators(ctx context.Context, activeOnly bool) ([]Creator, error)
}

// Storage is the full persistent store.
type Storage interface {
	// Init opens the database and runs migrations.
	Init() error

	// Close closes the database connection.
	Close() error

	CatalogStore
	VoteStore
	RankingStore
	CreatorStore
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// NewStorage creates a storage instance at ~/.tingle-radar/radar.db.
func NewStorage() (*SQLiteStorage, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStorageAt(filepath.Join(home, ".tingle-radar", "radar.db")), nil
}

// NewStorageAt creates a storage instance backed by the file at dbPath.
// The file and its directory are created on Init.
func NewStorageAt(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{dbPath: dbPath}
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Init opens the database and runs migrations. It is safe to call more than
// once; later calls return the first result.
func (s *SQLiteStorage) Init() error {
	s.initOnce.Do(func() {
		// Ensure directory exists
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			s.initErr = fmt.Errorf("failed to create db directory: %w", err)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			s.initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		// One writer at a time keeps SQLite from returning SQLITE_BUSY
		// inside vote transactions.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			s.initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		s.db = db
		if err := s.runMigrations(); err != nil {
			db.Close()
			s.db = nil
			s.initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
		log.Printf("Database ready at %s", s.dbPath)
	})

	return s.initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// conn returns the open database or errNotOpen. Callers must hold s.mu.
func (s *SQLiteStorage) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	return s.db, nil
}
