package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/rankings"
	"github.com/tingleradar/tingle-radar/internal/search"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

func newTestAPI(t *testing.T, opts Options) (http.Handler, *radar.Service, *storage.SQLiteStorage) {
	t.Helper()

	store := storage.NewStorageAt(filepath.Join(t.TempDir(), "api.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	index, err := search.NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	t.Cleanup(func() { index.Close() })

	svc := radar.NewService(store, radar.Options{Index: index})
	return NewServer(svc, opts).Handler(), svc, store
}

func seed(t *testing.T, store *storage.SQLiteStorage) {
	t.Helper()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	long, short := 1200, 200
	videos := []storage.Video{
		{YouTubeID: "bin", Title: "Binaural whisper", ChannelID: "UC1", ChannelTitle: "One", PublishedAt: base.Add(3 * time.Hour), Duration: &long, IsActive: true},
		{YouTubeID: "tap", Title: "Tapping", ChannelID: "UC1", ChannelTitle: "One", PublishedAt: base.Add(2 * time.Hour), Duration: &short, IsActive: true},
		{YouTubeID: "ja", Title: "ささやき", ChannelID: "UC2", ChannelTitle: "Two", PublishedAt: base.Add(1 * time.Hour), IsActive: true},
	}
	for _, v := range videos {
		if err := store.UpsertVideo(context.Background(), v); err != nil {
			t.Fatalf("UpsertVideo failed: %v", err)
		}
	}
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestAPI(t, Options{})

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	rec = do(t, h, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: "abc"})
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("request id not echoed: %q", rec.Header().Get(RequestIDHeader))
	}
}

type browseBody struct {
	Items []struct {
		YouTubeID     string   `json:"youtube_id"`
		EffectiveTags []string `json:"effective_tags"`
		Language      string   `json:"language"`
	} `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func TestBrowse(t *testing.T) {
	h, _, store := newTestAPI(t, Options{DefaultPageSize: 50})
	seed(t, store)

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"all newest first", "/videos", []string{"bin", "tap", "ja"}},
		{"long binaural", "/videos?duration_bucket=long&tags=binaural", []string{"bin"}},
		{"tags comma list", "/videos?tags=tapping,binaural", []string{"bin", "tap"}},
		{"channel set wins", "/videos?channel_id=UC1&channel_ids=UC2", []string{"ja"}},
		{"language", "/videos?language=ja", []string{"ja"}},
		{"paged", "/videos?page=2&page_size=1", []string{"tap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			var body browseBody
			decode(t, rec, &body)

			var ids []string
			for _, item := range body.Items {
				ids = append(ids, item.YouTubeID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestBrowse_DefaultsAndClamp(t *testing.T) {
	h, _, store := newTestAPI(t, Options{DefaultPageSize: 2})
	seed(t, store)

	var body browseBody
	decode(t, do(t, h, http.MethodGet, "/videos", "", nil), &body)
	if body.PageSize != 2 || body.Page != 1 || body.Total != 3 || len(body.Items) != 2 {
		t.Errorf("unexpected defaults: %+v", body)
	}

	decode(t, do(t, h, http.MethodGet, "/videos?page=0&page_size=0", "", nil), &body)
	if body.Page != 1 || body.PageSize != 1 {
		t.Errorf("clamp failed: page=%d size=%d", body.Page, body.PageSize)
	}
}

func TestBrowse_BadParams(t *testing.T) {
	h, _, _ := newTestAPI(t, Options{})

	for _, target := range []string{
		"/videos?duration_bucket=forever",
		"/videos?sort=random",
		"/videos?page=abc",
		"/videos?language=fr",
	} {
		if rec := do(t, h, http.MethodGet, target, "", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestVideo(t *testing.T) {
	h, _, store := newTestAPI(t, Options{})
	seed(t, store)

	rec := do(t, h, http.MethodGet, "/videos/bin", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		YouTubeID     string         `json:"youtube_id"`
		EffectiveTags []string       `json:"effective_tags"`
		TagScores     map[string]int `json:"tag_scores"`
	}
	decode(t, rec, &body)
	if body.YouTubeID != "bin" || strings.Join(body.EffectiveTags, ",") != "binaural,whisper" {
		t.Errorf("unexpected body: %+v", body)
	}

	if rec := do(t, h, http.MethodGet, "/videos/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing video status = %d", rec.Code)
	}
}

func TestVoteFlow(t *testing.T) {
	h, _, store := newTestAPI(t, Options{})
	seed(t, store)

	for i, fp := range []string{"a", "b", "c"} {
		rec := do(t, h, http.MethodPost, "/videos/tap/tags/tapping/vote", `{"vote": -1}`, map[string]string{FingerprintHeader: fp})
		if rec.Code != http.StatusOK {
			t.Fatalf("vote %d status = %d body = %s", i, rec.Code, rec.Body.String())
		}
		var body voteResponse
		decode(t, rec, &body)
		if body.Score != -(i + 1) {
			t.Errorf("score = %d, want %d", body.Score, -(i + 1))
		}
	}

	var scores map[string]int
	decode(t, do(t, h, http.MethodGet, "/videos/tap/tags/scores", "", nil), &scores)
	if scores["tapping"] != -3 {
		t.Errorf("scores = %v", scores)
	}

	var body browseBody
	decode(t, do(t, h, http.MethodGet, "/videos?tags=tapping", "", nil), &body)
	if body.Total != 0 {
		t.Errorf("tapping should be suppressed, got %+v", body.Items)
	}
}

func TestVote_Errors(t *testing.T) {
	h, _, store := newTestAPI(t, Options{})
	seed(t, store)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"bad tag", "/videos/tap/tags/loud/vote", `{"vote": 1}`, http.StatusBadRequest},
		{"zero", "/videos/tap/tags/tapping/vote", `{"vote": 0}`, http.StatusBadRequest},
		{"missing field", "/videos/tap/tags/tapping/vote", `{}`, http.StatusBadRequest},
		{"bad json", "/videos/tap/tags/tapping/vote", `{`, http.StatusBadRequest},
		{"unknown video", "/videos/nope/tags/tapping/vote", `{"vote": 1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, tt.target, tt.body, nil); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestVote_RateLimited(t *testing.T) {
	h, _, store := newTestAPI(t, Options{VoteRatePerMinute: 1, VoteBurst: 2})
	seed(t, store)

	headers := map[string]string{FingerprintHeader: "spammer"}
	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodPost, "/videos/tap/tags/tapping/vote", `{"vote": 1}`, headers).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	other := do(t, h, http.MethodPost, "/videos/tap/tags/tapping/vote", `{"vote": 1}`, map[string]string{FingerprintHeader: "other"})
	if other.Code != http.StatusOK {
		t.Errorf("other voter status = %d", other.Code)
	}
}

func TestVoteLimiter_SweepsIdle(t *testing.T) {
	l := newVoteLimiter(60, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * idleLimiterTTL)
	l.Allow("b")

	if _, ok := l.entries["a"]; ok {
		t.Error("idle limiter was not swept")
	}
	if len(l.entries) != 1 {
		t.Errorf("entries = %d, want 1", len(l.entries))
	}
}

func TestWeeklyRankings(t *testing.T) {
	h, svc, _ := newTestAPI(t, Options{})

	if rec := do(t, h, http.MethodGet, "/rankings/weekly", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("empty rankings status = %d, want 404", rec.Code)
	}

	snap := rankings.Snapshot{
		Name:  "ASMR Weekly Pulse 2026-05-01",
		Items: []storage.Video{{YouTubeID: "r1", Title: "Whisper", ChannelID: "UC1", ChannelTitle: "C", ViewCount: 5}},
	}
	if _, err := svc.ImportRanking(context.Background(), snap, rankings.ImportOptions{}); err != nil {
		t.Fatalf("ImportRanking failed: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/rankings/weekly", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Lists []struct {
			Name        string    `json:"name"`
			DisplayDate time.Time `json:"display_date"`
			Items       []any     `json:"items"`
		} `json:"lists"`
	}
	decode(t, rec, &body)
	if len(body.Lists) != 1 || len(body.Lists[0].Items) != 1 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !body.Lists[0].DisplayDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DisplayDate = %v", body.Lists[0].DisplayDate)
	}
}

func TestPopularChannels(t *testing.T) {
	h, _, store := newTestAPI(t, Options{})
	seed(t, store)

	var body struct {
		Channels []storage.ChannelCount `json:"channels"`
	}
	decode(t, do(t, h, http.MethodGet, "/channels/popular?limit=1", "", nil), &body)
	if len(body.Channels) != 1 || body.Channels[0].ChannelID != "UC1" {
		t.Errorf("unexpected channels: %+v", body.Channels)
	}
}

func TestSearch(t *testing.T) {
	h, svc, store := newTestAPI(t, Options{})
	seed(t, store)
	if _, err := svc.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}

	if rec := do(t, h, http.MethodGet, "/search", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d", rec.Code)
	}

	var body struct {
		Total   int `json:"total"`
		Results []struct {
			YouTubeID string `json:"youtube_id"`
		} `json:"results"`
	}
	decode(t, do(t, h, http.MethodGet, "/search?q=tapping", "", nil), &body)
	if body.Total != 1 || body.Results[0].YouTubeID != "tap" {
		t.Errorf("unexpected search body: %+v", body)
	}
}
