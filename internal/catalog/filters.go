package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tingleradar/tingle-radar/internal/storage"
)

var (
	// ErrInvalidBucket is returned by ParseBucket for unknown bucket names.
	ErrInvalidBucket = errors.New("invalid duration bucket")

	// ErrInvalidSort is returned by ParseSort for unknown sort keys.
	ErrInvalidSort = errors.New("invalid sort key")
)

// Bucket is a fixed duration range used for filtering.
type Bucket string

const (
	BucketAny    Bucket = ""
	BucketShort  Bucket = "short"
	BucketMedium Bucket = "medium"
	BucketLong   Bucket = "long"
)

// ParseBucket validates a bucket name. The empty string means no filter.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketAny, BucketShort, BucketMedium, BucketLong:
		return b, nil
	default:
		return BucketAny, fmt.Errorf("%w: %q (expected short, medium or long)", ErrInvalidBucket, s)
	}
}

// Bounds returns the bucket's range in seconds, min inclusive and max
// exclusive. A nil bound is open.
func (b Bucket) Bounds() (lo, hi *int) {
	switch b {
	case BucketShort:
		return intPtr(120), intPtr(300)
	case BucketMedium:
		return intPtr(300), intPtr(900)
	case BucketLong:
		return intPtr(900), nil
	default:
		return nil, nil
	}
}

// Contains reports whether a duration falls in the bucket. Unknown durations
// never match a concrete bucket.
func (b Bucket) Contains(duration *int) bool {
	if b == BucketAny {
		return true
	}
	if duration == nil {
		return false
	}
	lo, hi := b.Bounds()
	if lo != nil && *duration < *lo {
		return false
	}
	if hi != nil && *duration >= *hi {
		return false
	}
	return true
}

// SortKey orders browse results.
type SortKey string

const (
	SortPublished SortKey = SortKey(storage.SortPublished)
	SortViews     SortKey = SortKey(storage.SortViews)
	SortLikes     SortKey = SortKey(storage.SortLikes)
)

// ParseSort validates a sort key. The empty string selects SortPublished.
func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortPublished, nil
	case SortPublished, SortViews, SortLikes:
		return k, nil
	default:
		return SortPublished, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

// Filters narrows a browse. Dimensions combine with AND; values inside a
// multi-valued dimension combine with OR.
type Filters struct {
	// ChannelID is the single-channel form. ChannelIDs takes precedence
	// when non-empty.
	ChannelID  string
	ChannelIDs []string

	Duration Bucket

	// Tags matches items whose effective tags intersect this set.
	Tags []string

	// Language is one of ja, ko, zh, en; empty means any.
	Language string

	Sort SortKey
}

// Channels returns the effective channel filter.
func (f Filters) Channels() []string {
	if len(f.ChannelIDs) > 0 {
		return f.ChannelIDs
	}
	if f.ChannelID != "" {
		return []string{f.ChannelID}
	}
	return nil
}

// needsResolution reports whether any filter depends on computed tags or
// title heuristics, which SQLite cannot evaluate.
func (f Filters) needsResolution() bool {
	return len(f.Tags) > 0 || f.Language != ""
}

func (f Filters) query() storage.VideoQuery {
	lo, hi := f.Duration.Bounds()
	return storage.VideoQuery{
		ChannelIDs:  f.Channels(),
		MinDuration: lo,
		MaxDuration: hi,
		Sort:        storage.SortOrder(f.Sort),
	}
}

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// Clamp raises a page number or size below 1 to 1 and caps the size at
// maxSize when maxSize is positive.
func (p Page) Clamp(maxSize int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 1
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Offset returns the number of rows preceding the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func intPtr(i int) *int { return &i }
