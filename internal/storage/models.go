/*
Package storage provides data models for the catalog, vote ledger, ranking
snapshots, and creator watchlist.
*/
package storage

import "time"

// Video is one catalog row.
type Video struct {
	// YouTubeID is the immutable external identifier.
	YouTubeID string `json:"youtube_id"`

	Title       string  `json:"title"`
	Description *string `json:"description"`

	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`

	PublishedAt time.Time `json:"published_at"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`

	// Duration is in seconds; nil when unknown.
	Duration *int `json:"duration"`

	// Labels are the creator-supplied tags from the platform.
	Labels []string `json:"tags"`

	ThumbnailURL *string `json:"thumbnail_url"`
	IsActive     bool    `json:"is_active"`

	// ComputedTags caches classifier output; nil means not yet computed.
	ComputedTags []string `json:"computed_tags,omitempty"`
}

// DescriptionText returns the description or "" when absent.
func (v Video) DescriptionText() string {
	if v.Description == nil {
		return ""
	}
	return *v.Description
}

// SortOrder is the ordering applied by ListVideos.
type SortOrder string

const (
	// SortPublished orders newest first with no secondary key.
	SortPublished SortOrder = "published_desc"

	// SortViews orders by view count, ties newest first.
	SortViews SortOrder = "views_desc"

	// SortLikes orders by like count, ties newest first.
	SortLikes SortOrder = "likes_desc"
)

// VideoQuery selects catalog rows using filters SQLite can evaluate.
type VideoQuery struct {
	// ChannelIDs restricts to any of the given channels when non-empty.
	ChannelIDs []string

	// MinDuration is inclusive, MaxDuration exclusive. Either set excludes
	// videos with unknown duration.
	MinDuration *int
	MaxDuration *int

	Sort SortOrder

	// Limit <= 0 means no limit.
	Limit  int
	Offset int
}

// Vote is a single signed vote on a (video, tag) pair.
type Vote struct {
	VideoID     string    `json:"video_id"`
	Tag         string    `json:"tag"`
	Fingerprint string    `json:"user_fingerprint"`
	Value       int       `json:"vote"` // +1 or -1
	CreatedAt   time.Time `json:"created_at"`
}

// RankingList is a named ranking snapshot.
type RankingList struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RankingEntry is one position within a snapshot.
type RankingEntry struct {
	VideoID  string `json:"video_id"`
	Position int    `json:"position"`
	Score    int64  `json:"score"`
}

// ChannelCount is a channel with the number of catalog videos it owns.
type ChannelCount struct {
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	VideoCount   int    `json:"video_count"`
}

// Creator is a channel on the ingestion watchlist.
type Creator struct {
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Note         string    `json:"note,omitempty"`
	Priority     int       `json:"priority"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
