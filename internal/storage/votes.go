package storage

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// UpsertVote writes v and returns the recomputed aggregate for (video, tag).
//
// The write and the recount share one transaction. The aggregate is always a
// full SUM over the ledger, never an incremental counter.
func (s *SQLiteStorage) UpsertVote(ctx context.Context, v Vote) (int, error) {
	if v.Value != 1 && v.Value != -1 {
		return 0, fmt.Errorf("vote value %d out of range", v.Value)
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := formatTime(v.CreatedAt)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO video_tag_votes (video_id, tag, user_fingerprint, vote, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id, tag, user_fingerprint) DO UPDATE SET
			vote = excluded.vote,
			updated_at = excluded.updated_at
	`, v.VideoID, v.Tag, v.Fingerprint, v.Value, stamp, stamp); err != nil {
		return 0, fmt.Errorf("failed to record vote: %w", err)
	}

	var total int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(vote), 0) FROM video_tag_votes
		WHERE video_id = ? AND tag = ?
	`, v.VideoID, v.Tag).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to recompute score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit vote: %w", err)
	}
	return total, nil
}

// VoteScores returns {tag: sum} for every tag with at least one vote.
func (s *SQLiteStorage) VoteScores(ctx context.Context, videoID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT tag, SUM(vote) FROM video_tag_votes
		WHERE video_id = ?
		GROUP BY tag
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var tag string
		var score int
		if err := rows.Scan(&tag, &score); err != nil {
			return nil, fmt.Errorf("failed to scan vote score: %w", err)
		}
		scores[tag] = score
	}
	return scores, rows.Err()
}

// voteScoresChunk bounds the IN list of one VoteScoresFor query.
const voteScoresChunk = 500

// VoteScoresFor returns {video: {tag: sum}} for the given videos.
func (s *SQLiteStorage) VoteScoresFor(ctx context.Context, videoIDs []string) (map[string]map[string]int, error) {
	result := make(map[string]map[string]int)
	if len(videoIDs) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	for chunk := range slices.Chunk(videoIDs, voteScoresChunk) {
		rows, err := db.QueryContext(ctx, `
			SELECT video_id, tag, SUM(vote) FROM video_tag_votes
			WHERE video_id IN (`+placeholders(len(chunk))+`)
			GROUP BY video_id, tag
		`, stringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query vote scores: %w", err)
		}

		for rows.Next() {
			var id, tag string
			var score int
			if err := rows.Scan(&id, &tag, &score); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan vote score: %w", err)
			}
			if result[id] == nil {
				result[id] = make(map[string]int)
			}
			result[id][tag] = score
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
