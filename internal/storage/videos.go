package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const videoColumns = `youtube_id, title, description, channel_title, channel_id, published_at,
	view_count, like_count, duration, tags, thumbnail_url, is_active, computed_tags`

// UpsertVideo inserts or updates a video.
func (s *SQLiteStorage) UpsertVideo(ctx context.Context, v Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	if err := upsertVideo(ctx, db, v); err != nil {
		return fmt.Errorf("failed to upsert video %s: %w", v.YouTubeID, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertVideo(ctx context.Context, ex execer, v Video) error {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(youtube_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			channel_title = excluded.channel_title,
			channel_id = excluded.channel_id,
			published_at = excluded.published_at,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			duration = excluded.duration,
			tags = excluded.tags,
			thumbnail_url = excluded.thumbnail_url,
			is_active = excluded.is_active,
			computed_tags = CASE
				WHEN excluded.computed_tags IS NOT NULL THEN excluded.computed_tags
				WHEN videos.title IS excluded.title
					AND videos.description IS excluded.description
					AND videos.tags IS excluded.tags THEN videos.computed_tags
				ELSE NULL
			END
	`

	_, err := ex.ExecContext(ctx, query,
		v.YouTubeID,
		v.Title,
		nullString(v.Description),
		v.ChannelTitle,
		v.ChannelID,
		formatTime(v.PublishedAt),
		v.ViewCount,
		v.LikeCount,
		nullInt(v.Duration),
		tagsToJSON(v.Labels),
		nullString(v.ThumbnailURL),
		boolToInt(v.IsActive),
		tagsToJSON(v.ComputedTags),
	)
	return err
}

// GetVideo returns a single video or ErrNotFound.
func (s *SQLiteStorage) GetVideo(ctx context.Context, id string) (*Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE youtube_id = ?`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return &v, nil
}

// GetVideos returns the videos among ids that exist, keyed by id.
func (s *SQLiteStorage) GetVideos(ctx context.Context, ids []string) (map[string]Video, error) {
	result := make(map[string]Video, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + videoColumns + ` FROM videos WHERE youtube_id IN (` + placeholders(len(ids)) + `)`
	rows, err := db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		result[v.YouTubeID] = v
	}
	return result, rows.Err()
}

// ListVideos returns videos matching q in the requested order.
func (s *SQLiteStorage) ListVideos(ctx context.Context, q VideoQuery) ([]Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	where, args := buildVideoWhere(q)
	query := `SELECT ` + videoColumns + ` FROM videos` + where + orderBy(q.Sort)
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, max(q.Offset, 0))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// CountVideos counts videos matching q, ignoring Limit and Offset.
func (s *SQLiteStorage) CountVideos(ctx context.Context, q VideoQuery) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	where, args := buildVideoWhere(q)
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}

// SetComputedTags stores the classifier output cache for a video.
func (s *SQLiteStorage) SetComputedTags(ctx context.Context, id string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `UPDATE videos SET computed_tags = ? WHERE youtube_id = ?`, tagsToJSON(tags), id)
	if err != nil {
		return fmt.Errorf("failed to set computed tags for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListUncachedVideos returns up to limit videos with no cached tags.
func (s *SQLiteStorage) ListUncachedVideos(ctx context.Context, limit int) ([]Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + videoColumns + ` FROM videos WHERE computed_tags IS NULL ORDER BY youtube_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncached videos: %w", err)
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// TopChannels returns channels ordered by video count desc, then title asc.
func (s *SQLiteStorage) TopChannels(ctx context.Context, limit int) ([]ChannelCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT channel_id, channel_title, COUNT(youtube_id) AS video_count
		FROM videos
		GROUP BY channel_id, channel_title
		ORDER BY video_count DESC, channel_title ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top channels: %w", err)
	}
	defer rows.Close()

	channels := []ChannelCount{}
	for rows.Next() {
		var c ChannelCount
		if err := rows.Scan(&c.ChannelID, &c.ChannelTitle, &c.VideoCount); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// buildVideoWhere renders the SQL-side filters of q.
func buildVideoWhere(q VideoQuery) (string, []any) {
	var clauses []string
	var args []any

	if len(q.ChannelIDs) > 0 {
		clauses = append(clauses, `channel_id IN (`+placeholders(len(q.ChannelIDs))+`)`)
		args = append(args, stringArgs(q.ChannelIDs)...)
	}
	if q.MinDuration != nil {
		clauses = append(clauses, `duration >= ?`)
		args = append(args, *q.MinDuration)
	}
	if q.MaxDuration != nil {
		clauses = append(clauses, `duration < ?`)
		args = append(args, *q.MaxDuration)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

func orderBy(sort SortOrder) string {
	switch sort {
	case SortViews:
		return ` ORDER BY view_count DESC, published_at DESC`
	case SortLikes:
		return ` ORDER BY like_count DESC, published_at DESC`
	default:
		return ` ORDER BY published_at DESC`
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner) (Video, error) {
	var v Video
	var description, thumbnail, labels, computed sql.NullString
	var duration sql.NullInt64
	var published string
	var active int

	if err := row.Scan(
		&v.YouTubeID,
		&v.Title,
		&description,
		&v.ChannelTitle,
		&v.ChannelID,
		&published,
		&v.ViewCount,
		&v.LikeCount,
		&duration,
		&labels,
		&thumbnail,
		&active,
		&computed,
	); err != nil {
		return Video{}, err
	}

	var err error
	if v.PublishedAt, err = parseTime(published); err != nil {
		return Video{}, fmt.Errorf("bad published_at %q: %w", published, err)
	}
	if description.Valid {
		v.Description = &description.String
	}
	if thumbnail.Valid {
		v.ThumbnailURL = &thumbnail.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		v.Duration = &d
	}
	if v.Labels, err = jsonToTags(labels); err != nil {
		return Video{}, fmt.Errorf("bad tags column: %w", err)
	}
	if v.ComputedTags, err = jsonToTags(computed); err != nil {
		return Video{}, fmt.Errorf("bad computed_tags column: %w", err)
	}
	v.IsActive = active == 1
	return v, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
