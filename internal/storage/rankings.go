package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateRankingList stores a snapshot and its videos in one transaction.
func (s *SQLiteStorage) CreateRankingList(ctx context.Context, list RankingList, videos []Video, entries []RankingEntry) (int64, error) {
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin ranking transaction: %w", err)
	}
	defer tx.Rollback()

	for _, v := range videos {
		if err := upsertVideo(ctx, tx, v); err != nil {
			return 0, fmt.Errorf("failed to upsert video %s: %w", v.YouTubeID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ranking_lists (name, description, created_at) VALUES (?, ?, ?)
	`, list.Name, list.Description, formatTime(list.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to create ranking list: %w", err)
	}
	listID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read ranking list id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ranking_items (ranking_list_id, video_id, position, score) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare ranking items: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, listID, e.VideoID, e.Position, e.Score); err != nil {
			return 0, fmt.Errorf("failed to insert ranking item %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ranking list: %w", err)
	}
	return listID, nil
}

// RecentRankingLists returns up to limit snapshots, newest first.
func (s *SQLiteStorage) RecentRankingLists(ctx context.Context, limit int) ([]RankingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, created_at FROM ranking_lists
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking lists: %w", err)
	}
	defer rows.Close()

	lists := []RankingList{}
	for rows.Next() {
		var l RankingList
		var description sql.NullString
		var created string
		if err := rows.Scan(&l.ID, &l.Name, &description, &created); err != nil {
			return nil, fmt.Errorf("failed to scan ranking list: %w", err)
		}
		l.Description = description.String
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", created, err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// RankingEntries returns up to limit entries of a snapshot by position.
func (s *SQLiteStorage) RankingEntries(ctx context.Context, listID int64, limit int) ([]RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT video_id, position, COALESCE(score, 0) FROM ranking_items
		WHERE ranking_list_id = ?
		ORDER BY position
		LIMIT ?
	`, listID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking items: %w", err)
	}
	defer rows.Close()

	entries := []RankingEntry{}
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(&e.VideoID, &e.Position, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan ranking item: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
