/*
Package radar wires the classifier, vote ledger, consensus resolver, browse
engine, and ranking assembler into the single service the HTTP API, the MCP
server, and the CLI call into.
*/
package radar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/consensus"
	"github.com/tingleradar/tingle-radar/internal/rankings"
	"github.com/tingleradar/tingle-radar/internal/search"
	"github.com/tingleradar/tingle-radar/internal/storage"
	"github.com/tingleradar/tingle-radar/internal/tagging"
	"github.com/tingleradar/tingle-radar/internal/votes"
)

var (
	// ErrInvalidTag is returned when a vote names a tag outside the vocabulary.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidVoteValue is returned when a vote direction is not +1 or -1.
	ErrInvalidVoteValue = errors.New("vote must be 1 or -1")

	// ErrSearchUnavailable is returned by Search when no index was attached.
	ErrSearchUnavailable = errors.New("search index not available")
)

// AnonymousFingerprint replaces an empty voter fingerprint.
const AnonymousFingerprint = "anonymous"

// DefaultBackfillBatch is the batch size Backfill uses when given <= 0.
const DefaultBackfillBatch = 200

// Options configures a Service.
type Options struct {
	// Rules overrides the default rule table.
	Rules *tagging.RuleTable

	// MaxPageSize caps browse page sizes; <= 0 selects the catalog default.
	MaxPageSize int

	// Index enables Search and Reindex when set.
	Index *search.Indexer
}

// Service is the tag classification and browse core.
type Service struct {
	store      storage.Storage
	classifier *tagging.Classifier
	ledger     *votes.Ledger
	engine     *catalog.Engine
	assembler  *rankings.Assembler
	index      *search.Indexer
}

// NewService creates a service over an initialized store.
func NewService(store storage.Storage, opts Options) *Service {
	table := tagging.DefaultRuleTable()
	if opts.Rules != nil {
		table = *opts.Rules
	}

	s := &Service{
		store:      store,
		classifier: tagging.NewClassifier(table),
		ledger:     votes.NewLedger(store),
		index:      opts.Index,
	}
	s.engine = catalog.NewEngine(store, s, opts.MaxPageSize)
	s.assembler = rankings.NewAssembler(store, store, s)
	return s
}

// MaxPageSize returns the browse page size cap.
func (s *Service) MaxPageSize() int {
	return s.engine.MaxPageSize()
}

// Classify returns the rule-based tags for a video.
func (s *Service) Classify(v storage.Video) []string {
	return s.ClassifyFields(tagging.Fields{
		Title:       v.Title,
		Description: v.DescriptionText(),
		Labels:      v.Labels,
	})
}

// ClassifyFields returns the rule-based tags for raw text.
func (s *Service) ClassifyFields(f tagging.Fields) []string {
	return s.classifier.Classify(f)
}

// SubmitVote validates and records a vote and returns the new aggregate for
// (videoID, tag). Invalid tags and directions are rejected before anything
// is written.
func (s *Service) SubmitVote(ctx context.Context, videoID, tag, fingerprint string, direction int) (int, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !tagging.IsVotable(tag) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if direction != 1 && direction != -1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidVoteValue, direction)
	}
	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return 0, err
	}

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		fingerprint = AnonymousFingerprint
	}

	return s.ledger.Record(ctx, videoID, tag, fingerprint, direction)
}

// ScoresForItem returns the vote aggregate per tag for a video.
func (s *Service) ScoresForItem(ctx context.Context, videoID string) (map[string]int, error) {
	return s.ledger.ScoresForItem(ctx, videoID)
}

// Resolve applies vote scores to classifier tags.
func (s *Service) Resolve(classifierTags []string, scores map[string]int) []string {
	return consensus.Resolve(classifierTags, scores)
}

// EffectiveTags returns the vote-adjusted tags of v. Cached classifier
// output is used when present; otherwise v is classified in memory and
// nothing is written.
func (s *Service) EffectiveTags(ctx context.Context, v storage.Video) ([]string, error) {
	base := v.ComputedTags
	if base == nil {
		base = s.Classify(v)
	}

	scores, err := s.ledger.ScoresForItem(ctx, v.YouTubeID)
	if err != nil {
		return nil, err
	}
	return consensus.Resolve(base, scores), nil
}

// EffectiveTagsFor resolves the tags of several videos with one vote query.
// The result is in input order.
func (s *Service) EffectiveTagsFor(ctx context.Context, videos []storage.Video) ([][]string, error) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.YouTubeID
	}
	scores, err := s.ledger.ScoresForItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	tags := make([][]string, len(videos))
	for i, v := range videos {
		base := v.ComputedTags
		if base == nil {
			base = s.Classify(v)
		}
		tags[i] = consensus.Resolve(base, scores[v.YouTubeID])
	}
	return tags, nil
}

// EnsureCached stores the classifier output of v when it has none and
// returns the cached tags. Repeated calls write identical bytes.
func (s *Service) EnsureCached(ctx context.Context, v storage.Video) ([]string, error) {
	if v.ComputedTags != nil {
		return v.ComputedTags, nil
	}

	tags := s.Classify(v)
	if err := s.store.SetComputedTags(ctx, v.YouTubeID, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Backfill caches classifier output for every uncached video, batch rows at
// a time, and returns how many videos it classified.
func (s *Service) Backfill(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = DefaultBackfillBatch
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		videos, err := s.store.ListUncachedVideos(ctx, batch)
		if err != nil {
			return total, fmt.Errorf("failed to list uncached videos: %w", err)
		}
		if len(videos) == 0 {
			return total, nil
		}

		for _, v := range videos {
			if _, err := s.EnsureCached(ctx, v); err != nil {
				return total, fmt.Errorf("failed to cache tags for %s: %w", v.YouTubeID, err)
			}
			total++
		}
	}
}

// Ingest upserts videos with fresh classifier output so the cached tags
// track the new metadata. It returns how many videos were written.
func (s *Service) Ingest(ctx context.Context, videos []storage.Video) (int, error) {
	for i, v := range videos {
		if v.YouTubeID == "" {
			return i, fmt.Errorf("video %d has no youtube_id", i)
		}
		v.ComputedTags = s.Classify(v)
		if err := s.store.UpsertVideo(ctx, v); err != nil {
			return i, err
		}
	}
	return len(videos), nil
}

// Browse runs a filtered, paginated catalog query.
func (s *Service) Browse(ctx context.Context, f catalog.Filters, p catalog.Page) (catalog.Result, error) {
	return s.engine.Browse(ctx, f, p)
}

// VideoDetail is a single video with its tag state.
type VideoDetail struct {
	storage.Video
	EffectiveTags []string       `json:"effective_tags"`
	Language      string         `json:"language"`
	TagScores     map[string]int `json:"tag_scores"`
}

// Video returns one video with classifier, vote, and effective tags.
func (s *Service) Video(ctx context.Context, id string) (*VideoDetail, error) {
	v, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	scores, err := s.ledger.ScoresForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	base := v.ComputedTags
	if base == nil {
		base = s.Classify(*v)
	}

	return &VideoDetail{
		Video:         *v,
		EffectiveTags: consensus.Resolve(base, scores),
		Language:      catalog.DetectLanguage(v.Title),
		TagScores:     scores,
	}, nil
}

// DisplayDate returns the label date of a ranking snapshot.
func (s *Service) DisplayDate(name string, createdAt time.Time) time.Time {
	return rankings.DisplayDate(name, createdAt)
}

// WeeklyRankings returns the recent ranking snapshots with effective tags.
func (s *Service) WeeklyRankings(ctx context.Context) ([]rankings.List, error) {
	return s.assembler.Weekly(ctx)
}

// ImportRanking stores a ranking snapshot file's contents with fresh
// classifier output for every stored video.
func (s *Service) ImportRanking(ctx context.Context, snap rankings.Snapshot, opts rankings.ImportOptions) (rankings.ImportResult, error) {
	return rankings.Import(ctx, s.store, s, snap, opts)
}

// PopularChannels returns channels by video count. limit is clamped to 1..100.
func (s *Service) PopularChannels(ctx context.Context, limit int) ([]storage.ChannelCount, error) {
	limit = min(max(limit, 1), 100)
	return s.store.TopChannels(ctx, limit)
}

// AddCreator adds or updates a watchlist entry.
func (s *Service) AddCreator(ctx context.Context, c storage.Creator) error {
	return s.store.UpsertCreator(ctx, c)
}

// Creators lists the watchlist.
func (s *Service) Creators(ctx context.Context, activeOnly bool) ([]storage.Creator, error) {
	return s.store.ListCreators(ctx, activeOnly)
}

// SearchHit is a search result joined to its catalog row.
type SearchHit struct {
	storage.Video
	Score         float64  `json:"score"`
	EffectiveTags []string `json:"effective_tags"`
}

// Search runs a full-text query and returns hits in relevance order.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}

	results, err := s.index.Search(query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.VideoID
	}
	videos, err := s.store.GetVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(results))
	found := make([]storage.Video, 0, len(results))
	for _, r := range results {
		v, ok := videos[r.VideoID]
		if !ok {
			log.Printf("Warning: search hit %s no longer in catalog", r.VideoID)
			continue
		}
		hits = append(hits, SearchHit{Video: v, Score: r.Score})
		found = append(found, v)
	}

	tags, err := s.EffectiveTagsFor(ctx, found)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].EffectiveTags = tags[i]
	}
	return hits, nil
}

// Reindex rebuilds the search index from the catalog and returns how many
// videos were considered.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrSearchUnavailable
	}

	videos, err := s.store.ListVideos(ctx, storage.VideoQuery{})
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog for indexing: %w", err)
	}
	if err := s.index.Rebuild(videos); err != nil {
		return 0, err
	}
	return len(videos), nil
}
