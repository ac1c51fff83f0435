/*
Package votes records community votes on (video, tag) pairs and reports the
aggregate score per tag.
*/
package votes

import (
	"context"
	"fmt"
	"time"

	"github.com/tingleradar/tingle-radar/internal/storage"
)

// Ledger stores at most one live vote per (video, tag, fingerprint).
type Ledger struct {
	store storage.VoteStore
	now   func() time.Time
}

// NewLedger creates a ledger backed by store.
func NewLedger(store storage.VoteStore) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Record stores a vote and returns the recomputed aggregate for (videoID, tag).
// Any positive direction is stored as +1, anything else as -1. Callers are
// expected to have rejected zero and out-of-range values already.
func (l *Ledger) Record(ctx context.Context, videoID, tag, fingerprint string, direction int) (int, error) {
	value := -1
	if direction > 0 {
		value = 1
	}

	score, err := l.store.UpsertVote(ctx, storage.Vote{
		VideoID:     videoID,
		Tag:         tag,
		Fingerprint: fingerprint,
		Value:       value,
		CreatedAt:   l.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record vote on %s/%s: %w", videoID, tag, err)
	}
	return score, nil
}

// ScoresForItem returns the aggregate for every tag with at least one vote.
func (l *Ledger) ScoresForItem(ctx context.Context, videoID string) (map[string]int, error) {
	scores, err := l.store.VoteScores(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for %s: %w", videoID, err)
	}
	return scores, nil
}

// ScoresForItems returns ScoresForItem for several videos in one store query.
// Every requested id has an entry, empty when it has no votes.
func (l *Ledger) ScoresForItems(ctx context.Context, videoIDs []string) (map[string]map[string]int, error) {
	scores, err := l.store.VoteScoresFor(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for %d videos: %w", len(videoIDs), err)
	}
	for _, id := range videoIDs {
		if scores[id] == nil {
			scores[id] = map[string]int{}
		}
	}
	return scores, nil
}
