/*
Package catalog implements filtered, sorted, paginated browsing over the
video catalog with vote-adjusted tags attached to each row.

Channel and duration filters and the sort order run in SQLite. Tag and
language filters depend on computed tags and title heuristics, so when
either is requested the engine streams every SQL match in sort order and
filters in memory. Result.Total always counts rows matching every filter.
*/
package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/tingleradar/tingle-radar/internal/storage"
)

// DefaultMaxPageSize caps Page.Size when the engine has no explicit limit.
const DefaultMaxPageSize = 100

// TagResolver produces the effective tag sets of a batch of videos, one
// per video in input order.
type TagResolver interface {
	EffectiveTagsFor(ctx context.Context, videos []storage.Video) ([][]string, error)
}

// BrowseItem is one result row.
type BrowseItem struct {
	storage.Video
	EffectiveTags []string `json:"effective_tags"`
	Language      string   `json:"language"`
}

// Result is one page of a browse.
type Result struct {
	Items    []BrowseItem `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Engine runs browse queries.
type Engine struct {
	store       storage.CatalogStore
	tags        TagResolver
	maxPageSize int
}

// NewEngine creates an engine. maxPageSize <= 0 selects DefaultMaxPageSize.
func NewEngine(store storage.CatalogStore, tags TagResolver, maxPageSize int) *Engine {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Engine{store: store, tags: tags, maxPageSize: maxPageSize}
}

// MaxPageSize returns the page size cap.
func (e *Engine) MaxPageSize() int {
	return e.maxPageSize
}

// Browse returns the requested page and the number of matching videos.
func (e *Engine) Browse(ctx context.Context, f Filters, p Page) (Result, error) {
	p = p.Clamp(e.maxPageSize)
	q := f.query()

	if !f.needsResolution() {
		return e.browsePushdown(ctx, q, p)
	}
	return e.browseResolved(ctx, f, q, p)
}

func (e *Engine) browsePushdown(ctx context.Context, q storage.VideoQuery, p Page) (Result, error) {
	total, err := e.store.CountVideos(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count videos: %w", err)
	}

	q.Limit = p.Size
	q.Offset = p.Offset()
	videos, err := e.store.ListVideos(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list videos: %w", err)
	}

	items, err := e.items(ctx, videos)
	if err != nil {
		return Result{}, err
	}
	return Result{Items: items, Total: total, Page: p.Number, PageSize: p.Size}, nil
}

func (e *Engine) browseResolved(ctx context.Context, f Filters, q storage.VideoQuery, p Page) (Result, error) {
	videos, err := e.store.ListVideos(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list videos: %w", err)
	}
	all, err := e.items(ctx, videos)
	if err != nil {
		return Result{}, err
	}

	start := p.Offset()
	items := []BrowseItem{}
	total := 0
	for _, item := range all {
		if !f.matches(item) {
			continue
		}
		if total >= start && len(items) < p.Size {
			items = append(items, item)
		}
		total++
	}

	return Result{Items: items, Total: total, Page: p.Number, PageSize: p.Size}, nil
}

func (e *Engine) items(ctx context.Context, videos []storage.Video) ([]BrowseItem, error) {
	tags, err := e.tags.EffectiveTagsFor(ctx, videos)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(tags) != len(videos) {
		return nil, fmt.Errorf("tag resolver returned %d tag sets for %d videos", len(tags), len(videos))
	}

	items := make([]BrowseItem, len(videos))
	for i, v := range videos {
		items[i] = BrowseItem{Video: v, EffectiveTags: tags[i], Language: DetectLanguage(v.Title)}
	}
	return items, nil
}

// matches applies the in-memory filters.
func (f Filters) matches(item BrowseItem) bool {
	if f.Language != "" && item.Language != f.Language {
		return false
	}
	if len(f.Tags) > 0 && !intersects(item.EffectiveTags, f.Tags) {
		return false
	}
	return true
}

func intersects(have, want []string) bool {
	for _, t := range want {
		if slices.Contains(have, t) {
			return true
		}
	}
	return false
}
