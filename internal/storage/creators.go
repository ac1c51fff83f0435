package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertCreator adds a channel to the watchlist or updates its settings.
func (s *SQLiteStorage) UpsertCreator(ctx context.Context, c Creator) error {
	if c.Priority <= 0 {
		c.Priority = 1
	}
	now := formatTime(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO creator_watchlist (channel_id, channel_title, note, priority, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			channel_title = excluded.channel_title,
			note = excluded.note,
			priority = excluded.priority,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`, c.ChannelID, c.ChannelTitle, sql.NullString{String: c.Note, Valid: c.Note != ""},
		c.Priority, boolToInt(c.IsActive), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert creator %s: %w", c.ChannelID, err)
	}
	return nil
}

// ListCreators returns watchlist entries by priority desc, then title.
func (s *SQLiteStorage) ListCreators(ctx context.Context, activeOnly bool) ([]Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT channel_id, channel_title, note, priority, is_active, created_at, updated_at FROM creator_watchlist`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY priority DESC, channel_title ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query creators: %w", err)
	}
	defer rows.Close()

	creators := []Creator{}
	for rows.Next() {
		var c Creator
		var note sql.NullString
		var active int
		var created, updated string
		if err := rows.Scan(&c.ChannelID, &c.ChannelTitle, &note, &c.Priority, &active, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		c.Note = note.String
		c.IsActive = active == 1
		c.CreatedAt, _ = parseTime(created)
		c.UpdatedAt, _ = parseTime(updated)
		creators = append(creators, c)
	}
	return creators, rows.Err()
}
