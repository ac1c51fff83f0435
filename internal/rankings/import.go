package rankings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tingleradar/tingle-radar/internal/storage"
)

// DefaultImportTop is how many entries an imported snapshot keeps.
const DefaultImportTop = 60

// Blacklist drops candidates whose title, description or channel name
// contains any of these keywords.
var Blacklist = []string{
	"mukbang",
	"magnetic ball",
	"marble",
	"eating",
	"grinding",
	"politics",
}

// Snapshot is a generated ranking file.
type Snapshot struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Queries     []string        `json:"queries,omitempty"`
	Items       []storage.Video `json:"items"`
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// Tagger computes the cached classifier tags stored with imported videos.
type Tagger interface {
	Classify(v storage.Video) []string
}

// ImportOptions controls Import. Empty fields fall back to the snapshot's
// own values and then to defaults.
type ImportOptions struct {
	Top         int
	Name        string
	Description string
	DryRun      bool
}

// ImportResult describes what Import stored, or would have stored.
type ImportResult struct {
	ListID  int64                  `json:"list_id,omitempty"`
	Name    string                 `json:"name"`
	Entries []storage.RankingEntry `json:"entries"`
	Skipped int                    `json:"skipped"`
	DryRun  bool                   `json:"dry_run"`
}

// Import ranks the snapshot's videos by view count, drops blacklisted
// candidates, keeps the top entries, and stores the list with its videos.
// Stored videos carry tagger output for their new text; a nil tagger leaves
// them uncached for the next backfill.
func Import(ctx context.Context, store storage.RankingStore, tagger Tagger, snap Snapshot, opts ImportOptions) (ImportResult, error) {
	if opts.Top <= 0 {
		opts.Top = DefaultImportTop
	}
	generated := snap.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	result := ImportResult{
		Name:    firstNonEmpty(opts.Name, snap.Name, DefaultListName(generated)),
		Entries: []storage.RankingEntry{},
		DryRun:  opts.DryRun,
	}
	description := firstNonEmpty(opts.Description, snap.Description, queriesDescription(snap.Queries))

	candidates := make([]storage.Video, len(snap.Items))
	copy(candidates, snap.Items)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ViewCount > candidates[j].ViewCount
	})

	var kept []storage.Video
	for _, v := range candidates {
		if v.YouTubeID == "" || Blocked(v) {
			result.Skipped++
			continue
		}
		if len(kept) == opts.Top {
			break
		}
		v.IsActive = true
		v.ComputedTags = nil
		if tagger != nil {
			v.ComputedTags = tagger.Classify(v)
		}
		kept = append(kept, v)
		result.Entries = append(result.Entries, storage.RankingEntry{
			VideoID:  v.YouTubeID,
			Position: len(kept),
			Score:    v.ViewCount,
		})
	}

	if len(kept) == 0 {
		log.Printf("Warning: no items survived filtering for %q, nothing to store", result.Name)
		return result, nil
	}
	if opts.DryRun {
		return result, nil
	}

	id, err := store.CreateRankingList(ctx, storage.RankingList{
		Name:        result.Name,
		Description: description,
		CreatedAt:   generated,
	}, kept, result.Entries)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to store ranking %q: %w", result.Name, err)
	}
	result.ListID = id
	return result, nil
}

// Blocked reports whether a candidate matches the blacklist.
func Blocked(v storage.Video) bool {
	text := strings.ToLower(strings.Join([]string{v.Title, v.DescriptionText(), v.ChannelTitle}, " "))
	for _, keyword := range Blacklist {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// DefaultListName is the weekly label for a snapshot generated at t.
func DefaultListName(t time.Time) string {
	return "ASMR Weekly Pulse " + t.UTC().Format(dateSuffixLayout)
}

func queriesDescription(queries []string) string {
	if len(queries) == 0 {
		return ""
	}
	return "Queries: " + strings.Join(queries, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
