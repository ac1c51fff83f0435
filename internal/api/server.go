/*
Package api serves the catalog, vote, ranking, and search operations over
HTTP with JSON responses.
*/
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/rankings"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// Radar is the subset of radar.Service the API calls.
type Radar interface {
	Browse(ctx context.Context, f catalog.Filters, p catalog.Page) (catalog.Result, error)
	Video(ctx context.Context, id string) (*radar.VideoDetail, error)
	ScoresForItem(ctx context.Context, videoID string) (map[string]int, error)
	SubmitVote(ctx context.Context, videoID, tag, fingerprint string, direction int) (int, error)
	WeeklyRankings(ctx context.Context) ([]rankings.List, error)
	PopularChannels(ctx context.Context, limit int) ([]storage.ChannelCount, error)
	Search(ctx context.Context, query string, limit int) ([]radar.SearchHit, error)
}

// Options configures the handler.
type Options struct {
	// DefaultPageSize applies when page_size is omitted.
	DefaultPageSize int

	// VoteRatePerMinute and VoteBurst bound votes per fingerprint. A rate
	// <= 0 disables limiting.
	VoteRatePerMinute float64
	VoteBurst         int
}

// Server holds the HTTP handlers.
type Server struct {
	radar   Radar
	opts    Options
	limiter *voteLimiter
}

// NewServer creates the API server.
func NewServer(r Radar, opts Options) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 50
	}
	s := &Server{radar: r, opts: opts}
	if opts.VoteRatePerMinute > 0 {
		s.limiter = newVoteLimiter(opts.VoteRatePerMinute, max(opts.VoteBurst, 1))
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /videos", s.handleBrowse)
	mux.HandleFunc("GET /videos/{id}", s.handleVideo)
	mux.HandleFunc("GET /videos/{id}/tags/scores", s.handleScores)
	mux.HandleFunc("POST /videos/{id}/tags/{tag}/vote", s.handleVote)
	mux.HandleFunc("GET /rankings/weekly", s.handleWeekly)
	mux.HandleFunc("GET /channels/popular", s.handlePopularChannels)
	mux.HandleFunc("GET /search", s.handleSearch)

	return withRequestLog(mux)
}

// NewHTTPServer wraps the handler in an http.Server listening on addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server listening on %s", addr)
	return srv
}
