/*
Package rankings assembles weekly ranking payloads from stored snapshots and
imports new snapshots from generated ranking files.
*/
package rankings

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

const (
	// WeeklyListCount is how many recent snapshots a weekly payload holds.
	WeeklyListCount = 3

	// WeeklyTopN is how many entries each snapshot contributes.
	WeeklyTopN = 10
)

// Entry is one ranked video with its effective tags.
type Entry struct {
	Position      int           `json:"position"`
	Score         int64         `json:"score"`
	Video         storage.Video `json:"video"`
	EffectiveTags []string      `json:"effective_tags"`
}

// List is one assembled snapshot.
type List struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayDate time.Time `json:"display_date"`
	Items       []Entry   `json:"items"`
}

// VideoLookup fetches catalog rows by id.
type VideoLookup interface {
	GetVideos(ctx context.Context, ids []string) (map[string]storage.Video, error)
}

// Assembler builds ranking payloads.
type Assembler struct {
	rankings storage.RankingStore
	videos   VideoLookup
	tags     catalog.TagResolver
}

// NewAssembler creates an assembler.
func NewAssembler(rankings storage.RankingStore, videos VideoLookup, tags catalog.TagResolver) *Assembler {
	return &Assembler{rankings: rankings, videos: videos, tags: tags}
}

// Weekly returns the most recent snapshots, newest first, each with its top
// entries. Entries whose video is missing from the catalog are skipped. The
// result is empty, not nil, when no snapshot exists.
func (a *Assembler) Weekly(ctx context.Context) ([]List, error) {
	lists, err := a.rankings.RecentRankingLists(ctx, WeeklyListCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking lists: %w", err)
	}

	result := make([]List, 0, len(lists))
	for _, l := range lists {
		assembled, err := a.assemble(ctx, l)
		if err != nil {
			return nil, err
		}
		result = append(result, assembled)
	}
	return result, nil
}

func (a *Assembler) assemble(ctx context.Context, l storage.RankingList) (List, error) {
	entries, err := a.rankings.RankingEntries(ctx, l.ID, WeeklyTopN)
	if err != nil {
		return List{}, fmt.Errorf("failed to load entries of ranking %d: %w", l.ID, err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.VideoID
	}
	videos, err := a.videos.GetVideos(ctx, ids)
	if err != nil {
		return List{}, fmt.Errorf("failed to load videos of ranking %d: %w", l.ID, err)
	}

	out := List{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		DisplayDate: DisplayDate(l.Name, l.CreatedAt),
		Items:       make([]Entry, 0, len(entries)),
	}
	var found []storage.Video
	var kept []storage.RankingEntry
	for _, e := range entries {
		v, ok := videos[e.VideoID]
		if !ok {
			log.Printf("Warning: ranking %d position %d references missing video %s", l.ID, e.Position, e.VideoID)
			continue
		}
		found = append(found, v)
		kept = append(kept, e)
	}

	tags, err := a.tags.EffectiveTagsFor(ctx, found)
	if err != nil {
		return List{}, fmt.Errorf("failed to resolve tags of ranking %d: %w", l.ID, err)
	}
	if len(tags) != len(found) {
		return List{}, fmt.Errorf("tag resolver returned %d tag sets for %d videos", len(tags), len(found))
	}
	for i, e := range kept {
		out.Items = append(out.Items, Entry{
			Position:      e.Position,
			Score:         e.Score,
			Video:         found[i],
			EffectiveTags: tags[i],
		})
	}
	return out, nil
}
