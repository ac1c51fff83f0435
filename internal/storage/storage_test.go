/*
Package storage provides tests for the storage layer.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage := NewStorageAt(filepath.Join(t.TempDir(), "test.db"))
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func sampleVideo(id string, published time.Time) Video {
	return Video{
		YouTubeID:    id,
		Title:        "ASMR " + id,
		Description:  strPtr("description of " + id),
		ChannelID:    "UC1",
		ChannelTitle: "Channel One",
		PublishedAt:  published,
		ViewCount:    100,
		LikeCount:    10,
		Duration:     intPtr(600),
		Labels:       []string{"asmr", "relax"},
		IsActive:     true,
	}
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	storage := NewStorageAt(dbPath)

	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	version, err := storage.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion failed: %v", err)
	}
	if version != 4 {
		t.Errorf("Expected migration version 4, got %d", version)
	}
}

// TestInit_Reopen verifies migrations are not re-applied.
func TestInit_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := NewStorageAt(dbPath)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	first.Close()

	second := NewStorageAt(dbPath)
	if err := second.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer second.Close()
}

// TestNotInitialized verifies operations fail before Init.
func TestNotInitialized(t *testing.T) {
	storage := NewStorageAt(filepath.Join(t.TempDir(), "test.db"))

	if _, err := storage.GetVideo(context.Background(), "x"); !errors.Is(err, errNotOpen) {
		t.Errorf("expected errNotOpen, got %v", err)
	}
}

func TestUpsertAndGetVideo(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	published := time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC)

	v := sampleVideo("v1", published)
	if err := storage.UpsertVideo(ctx, v); err != nil {
		t.Fatalf("UpsertVideo failed: %v", err)
	}

	got, err := storage.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if got.Title != v.Title || got.DescriptionText() != "description of v1" {
		t.Errorf("unexpected video: %+v", got)
	}
	if !got.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, published)
	}
	if got.Duration == nil || *got.Duration != 600 {
		t.Errorf("Duration = %v, want 600", got.Duration)
	}
	if !reflect.DeepEqual(got.Labels, []string{"asmr", "relax"}) {
		t.Errorf("Labels = %v", got.Labels)
	}
	if got.ComputedTags != nil {
		t.Errorf("ComputedTags = %v, want nil", got.ComputedTags)
	}

}

func TestUpsertVideo_CachedTags(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	v := sampleVideo("v1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	storage.UpsertVideo(ctx, v)
	if err := storage.SetComputedTags(ctx, "v1", []string{"tapping"}); err != nil {
		t.Fatalf("SetComputedTags failed: %v", err)
	}

	// Same text, new counters: the cache survives.
	v.ViewCount = 5000
	if err := storage.UpsertVideo(ctx, v); err != nil {
		t.Fatalf("UpsertVideo failed: %v", err)
	}
	got, _ := storage.GetVideo(ctx, "v1")
	if got.ViewCount != 5000 {
		t.Errorf("ViewCount = %d, want 5000", got.ViewCount)
	}
	if !reflect.DeepEqual(got.ComputedTags, []string{"tapping"}) {
		t.Errorf("ComputedTags = %v, want [tapping]", got.ComputedTags)
	}

	tests := []struct {
		name   string
		change func(v *Video)
	}{
		{"title", func(v *Video) { v.Title = "Renamed" }},
		{"description", func(v *Video) { v.Description = strPtr("new text") }},
		{"labels", func(v *Video) { v.Labels = []string{"whisper"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage.SetComputedTags(ctx, "v1", []string{"tapping"})
			changed := v
			tt.change(&changed)
			if err := storage.UpsertVideo(ctx, changed); err != nil {
				t.Fatalf("UpsertVideo failed: %v", err)
			}
			got, _ := storage.GetVideo(ctx, "v1")
			if got.ComputedTags != nil {
				t.Errorf("ComputedTags = %v, want nil after %s change", got.ComputedTags, tt.name)
			}
		})
	}

	// Incoming tags always win.
	v.Title = "Soft whisper"
	v.ComputedTags = []string{"whisper"}
	storage.UpsertVideo(ctx, v)
	got, _ = storage.GetVideo(ctx, "v1")
	if !reflect.DeepEqual(got.ComputedTags, []string{"whisper"}) {
		t.Errorf("ComputedTags = %v, want [whisper]", got.ComputedTags)
	}
}

func TestGetVideo_NotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.GetVideo(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetComputedTags_EmptyIsCached(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	storage.UpsertVideo(ctx, sampleVideo("v1", time.Now()))

	if err := storage.SetComputedTags(ctx, "v1", nil); err != nil {
		t.Fatalf("SetComputedTags failed: %v", err)
	}

	got, _ := storage.GetVideo(ctx, "v1")
	if got.ComputedTags == nil || len(got.ComputedTags) != 0 {
		t.Errorf("ComputedTags = %#v, want empty non-nil", got.ComputedTags)
	}

	uncached, err := storage.ListUncachedVideos(ctx, 10)
	if err != nil {
		t.Fatalf("ListUncachedVideos failed: %v", err)
	}
	if len(uncached) != 0 {
		t.Errorf("expected no uncached videos, got %d", len(uncached))
	}

	if err := storage.SetComputedTags(ctx, "missing", []string{"x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListVideos_FiltersAndOrder(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []Video{
		sampleVideo("a", base.Add(1*time.Hour)),
		sampleVideo("b", base.Add(2*time.Hour)),
		sampleVideo("c", base.Add(3*time.Hour)),
		sampleVideo("d", base.Add(4*time.Hour)),
	}
	rows[0].Duration = intPtr(299)
	rows[1].Duration = intPtr(300)
	rows[2].Duration = nil
	rows[2].ChannelID = "UC2"
	rows[3].Duration = intPtr(900)
	rows[0].ViewCount = 500
	rows[3].ViewCount = 500

	for _, v := range rows {
		if err := storage.UpsertVideo(ctx, v); err != nil {
			t.Fatalf("UpsertVideo failed: %v", err)
		}
	}

	tests := []struct {
		name  string
		query VideoQuery
		want  []string
	}{
		{"default newest first", VideoQuery{}, []string{"d", "c", "b", "a"}},
		{"views with publish tiebreak", VideoQuery{Sort: SortViews}, []string{"d", "a", "c", "b"}},
		{"channel", VideoQuery{ChannelIDs: []string{"UC2"}}, []string{"c"}},
		{"min duration", VideoQuery{MinDuration: intPtr(300)}, []string{"d", "b"}},
		{"range", VideoQuery{MinDuration: intPtr(120), MaxDuration: intPtr(300)}, []string{"a"}},
		{"limit offset", VideoQuery{Limit: 2, Offset: 1}, []string{"c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos, err := storage.ListVideos(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListVideos failed: %v", err)
			}
			var ids []string
			for _, v := range videos {
				ids = append(ids, v.YouTubeID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}

			count, err := storage.CountVideos(ctx, tt.query)
			if err != nil {
				t.Fatalf("CountVideos failed: %v", err)
			}
			if tt.query.Limit == 0 && count != len(tt.want) {
				t.Errorf("CountVideos = %d, want %d", count, len(tt.want))
			}
		})
	}
}

func TestGetVideos(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	storage.UpsertVideo(ctx, sampleVideo("a", time.Now()))
	storage.UpsertVideo(ctx, sampleVideo("b", time.Now()))

	got, err := storage.GetVideos(ctx, []string{"a", "missing", "b"})
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 videos, got %d", len(got))
	}
	if _, ok := got["missing"]; ok {
		t.Error("missing id returned")
	}
}

// TestUpsertVote_Overwrite verifies one live vote per (video, tag, voter).
func TestUpsertVote_Overwrite(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	score, err := storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "other", Value: 1})
	if err != nil || score != 1 {
		t.Fatalf("first vote: score=%d err=%v", score, err)
	}

	score, _ = storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "me", Value: 1})
	if score != 2 {
		t.Errorf("score after +1 = %d, want 2", score)
	}

	score, _ = storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "me", Value: -1})
	if score != 0 {
		t.Errorf("score after overwrite = %d, want 0", score)
	}

	var rows int
	storage.db.QueryRow(`SELECT COUNT(*) FROM video_tag_votes`).Scan(&rows)
	if rows != 2 {
		t.Errorf("expected 2 vote rows, got %d", rows)
	}
}

func TestUpsertVote_RejectsNonUnit(t *testing.T) {
	storage := newTestStorage(t)

	if _, err := storage.UpsertVote(context.Background(), Vote{VideoID: "v1", Tag: "x", Fingerprint: "f", Value: 2}); err == nil {
		t.Error("expected error for value 2")
	}
}

func TestVoteScores(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "a", Value: -1})
	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "b", Value: -1})
	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "whisper", Fingerprint: "a", Value: 1})
	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "whisper", Fingerprint: "b", Value: -1})
	storage.UpsertVote(ctx, Vote{VideoID: "v2", Tag: "binaural", Fingerprint: "a", Value: 1})

	scores, err := storage.VoteScores(ctx, "v1")
	if err != nil {
		t.Fatalf("VoteScores failed: %v", err)
	}
	want := map[string]int{"tapping": -2, "whisper": 0}
	if !reflect.DeepEqual(scores, want) {
		t.Errorf("VoteScores = %v, want %v", scores, want)
	}

	empty, _ := storage.VoteScores(ctx, "none")
	if len(empty) != 0 {
		t.Errorf("expected no scores, got %v", empty)
	}
}

func TestVoteScoresFor(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "a", Value: -1})
	storage.UpsertVote(ctx, Vote{VideoID: "v1", Tag: "tapping", Fingerprint: "b", Value: -1})
	storage.UpsertVote(ctx, Vote{VideoID: "v2", Tag: "binaural", Fingerprint: "a", Value: 1})
	storage.UpsertVote(ctx, Vote{VideoID: "v3", Tag: "whisper", Fingerprint: "a", Value: 1})

	scores, err := storage.VoteScoresFor(ctx, []string{"v1", "v2", "none"})
	if err != nil {
		t.Fatalf("VoteScoresFor failed: %v", err)
	}
	want := map[string]map[string]int{
		"v1": {"tapping": -2},
		"v2": {"binaural": 1},
	}
	if !reflect.DeepEqual(scores, want) {
		t.Errorf("VoteScoresFor = %v, want %v", scores, want)
	}

	// Larger than one IN chunk.
	ids := make([]string, voteScoresChunk+10)
	for i := range ids {
		ids[i] = fmt.Sprintf("x%d", i)
	}
	ids[len(ids)-1] = "v3"
	scores, err = storage.VoteScoresFor(ctx, ids)
	if err != nil {
		t.Fatalf("VoteScoresFor failed: %v", err)
	}
	if !reflect.DeepEqual(scores, map[string]map[string]int{"v3": {"whisper": 1}}) {
		t.Errorf("chunked VoteScoresFor = %v", scores)
	}

	empty, err := storage.VoteScoresFor(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("VoteScoresFor(nil) = %v, %v", empty, err)
	}
}

func TestRankingLists(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(7 * 24 * time.Hour)

	videos := []Video{sampleVideo("a", older), sampleVideo("b", older)}
	entries := []RankingEntry{
		{VideoID: "b", Position: 2, Score: 50},
		{VideoID: "a", Position: 1, Score: 100},
	}

	oldID, err := storage.CreateRankingList(ctx, RankingList{Name: "Old", CreatedAt: older}, videos, entries)
	if err != nil {
		t.Fatalf("CreateRankingList failed: %v", err)
	}
	if _, err := storage.CreateRankingList(ctx, RankingList{Name: "New", CreatedAt: newer}, nil, nil); err != nil {
		t.Fatalf("CreateRankingList failed: %v", err)
	}

	lists, err := storage.RecentRankingLists(ctx, 3)
	if err != nil {
		t.Fatalf("RecentRankingLists failed: %v", err)
	}
	if len(lists) != 2 || lists[0].Name != "New" || lists[1].Name != "Old" {
		t.Fatalf("unexpected lists: %+v", lists)
	}

	got, err := storage.RankingEntries(ctx, oldID, 10)
	if err != nil {
		t.Fatalf("RankingEntries failed: %v", err)
	}
	if len(got) != 2 || got[0].VideoID != "a" || got[1].VideoID != "b" {
		t.Errorf("unexpected entries: %+v", got)
	}

	if _, err := storage.GetVideo(ctx, "a"); err != nil {
		t.Errorf("snapshot video not stored: %v", err)
	}
}

func TestTopChannels(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		v := sampleVideo(id, time.Now())
		if i == 2 {
			v.ChannelID, v.ChannelTitle = "UC2", "Another"
		}
		storage.UpsertVideo(ctx, v)
	}

	channels, err := storage.TopChannels(ctx, 10)
	if err != nil {
		t.Fatalf("TopChannels failed: %v", err)
	}
	if len(channels) != 2 || channels[0].ChannelID != "UC1" || channels[0].VideoCount != 2 {
		t.Errorf("unexpected channels: %+v", channels)
	}
}

func TestCreators(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	storage.UpsertCreator(ctx, Creator{ChannelID: "UC1", ChannelTitle: "Low", IsActive: true})
	storage.UpsertCreator(ctx, Creator{ChannelID: "UC2", ChannelTitle: "High", Priority: 5, IsActive: true})
	storage.UpsertCreator(ctx, Creator{ChannelID: "UC3", ChannelTitle: "Paused", IsActive: false})

	all, err := storage.ListCreators(ctx, false)
	if err != nil {
		t.Fatalf("ListCreators failed: %v", err)
	}
	if len(all) != 3 || all[0].ChannelID != "UC2" {
		t.Errorf("unexpected creators: %+v", all)
	}

	active, _ := storage.ListCreators(ctx, true)
	if len(active) != 2 {
		t.Errorf("expected 2 active creators, got %d", len(active))
	}
	if active[1].Priority != 1 {
		t.Errorf("default priority = %d, want 1", active[1].Priority)
	}
}
