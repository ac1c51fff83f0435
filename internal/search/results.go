/*
Package search implements full-text search over the video catalog.

The index is an in-memory Bleve index over title, description, creator
labels, and channel name, scored with BM25. It is rebuilt from SQLite on
startup and on the backfill schedule.
*/
package search

// Result is a single search hit with relevance score.
type Result struct {
	VideoID      string  `json:"youtube_id"`
	Title        string  `json:"title"`
	ChannelTitle string  `json:"channel_title"`
	Score        float64 `json:"score"`
}

// videoDocument is a video as stored in the search index.
type videoDocument struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Labels       []string `json:"labels"`
	ChannelID    string   `json:"channel_id"`
	ChannelTitle string   `json:"channel_title"`
}
