package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// FingerprintHeader carries the anonymous voter key.
const FingerprintHeader = "X-User-Fingerprint"

var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	f, p, err := s.parseBrowse(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.radar.Browse(r.Context(), f, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseBrowse reads browse filters from query parameters. Multi-valued
// parameters accept repeats and comma-separated lists.
func (s *Server) parseBrowse(q url.Values) (catalog.Filters, catalog.Page, error) {
	var f catalog.Filters
	var p catalog.Page
	var err error

	if p.Number, err = intParam(q, "page", 1); err != nil {
		return f, p, err
	}
	if p.Size, err = intParam(q, "page_size", s.opts.DefaultPageSize); err != nil {
		return f, p, err
	}

	f.ChannelID = strings.TrimSpace(q.Get("channel_id"))
	f.ChannelIDs = listParam(q, "channel_ids")
	f.Tags = listParam(q, "tags")

	if f.Duration, err = catalog.ParseBucket(q.Get("duration_bucket")); err != nil {
		return f, p, err
	}
	if f.Sort, err = catalog.ParseSort(q.Get("sort")); err != nil {
		return f, p, err
	}

	f.Language = strings.ToLower(strings.TrimSpace(q.Get("language")))
	switch f.Language {
	case "", catalog.LangJapanese, catalog.LangKorean, catalog.LangChinese, catalog.LangEnglish:
	default:
		return f, p, fmt.Errorf("%w: unknown language %q", errBadRequest, f.Language)
	}

	return f, p, nil
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := s.radar.Video(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.radar.ScoresForItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

type voteRequest struct {
	Vote *int `json:"vote"`
}

type voteResponse struct {
	VideoID string `json:"video_id"`
	Tag     string `json:"tag"`
	Score   int    `json:"score"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var body voteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	if body.Vote == nil {
		writeError(w, fmt.Errorf("%w: missing field 'vote'", errBadRequest))
		return
	}

	fingerprint := strings.TrimSpace(r.Header.Get(FingerprintHeader))
	if fingerprint == "" {
		fingerprint = radar.AnonymousFingerprint
	}
	if s.limiter != nil && !s.limiter.Allow(fingerprint) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many votes, slow down"})
		return
	}

	videoID, tag := r.PathValue("id"), r.PathValue("tag")
	score, err := s.radar.SubmitVote(r.Context(), videoID, tag, fingerprint, *body.Vote)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{VideoID: videoID, Tag: tag, Score: score})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	lists, err := s.radar.WeeklyRankings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if len(lists) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no rankings available"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

func (s *Server) handlePopularChannels(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", 30)
	if err != nil {
		writeError(w, err)
		return
	}

	channels, err := s.radar.PopularChannels(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter 'q'"})
		return
	}

	limit, err := intParam(r.URL.Query(), "limit", 20)
	if err != nil {
		writeError(w, err)
		return
	}

	hits, err := s.radar.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
		"total":   len(hits),
	})
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}

func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, radar.ErrInvalidTag),
		errors.Is(err, radar.ErrInvalidVoteValue),
		errors.Is(err, catalog.ErrInvalidBucket),
		errors.Is(err, catalog.ErrInvalidSort):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, radar.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Request error: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
