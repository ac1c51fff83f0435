package search

import (
	"fmt"
	"log"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

// Indexer manages the search index for the catalog.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// NewIndexer creates a new search indexer with in-memory Bleve index.
func NewIndexer() (*Indexer, error) {
	index, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Indexer{bleveIndex: index}, nil
}

func newMemIndex() (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return index, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	videoMapping := bleve.NewDocumentMapping()

	videoMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	videoMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())
	videoMapping.AddFieldMappingsAt("labels", bleve.NewTextFieldMapping())
	videoMapping.AddFieldMappingsAt("channel_title", bleve.NewTextFieldMapping())

	// Channel id: exact match only, kept out of the _all field
	channelMapping := bleve.NewKeywordFieldMapping()
	channelMapping.IncludeInAll = false
	videoMapping.AddFieldMappingsAt("channel_id", channelMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", videoMapping)

	return indexMapping
}

// IndexVideos adds or replaces videos in the index. Inactive videos are
// removed instead.
func (i *Indexer) IndexVideos(videos []storage.Video) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	return indexBatch(i.bleveIndex, videos)
}

func indexBatch(index bleve.Index, videos []storage.Video) error {
	batch := index.NewBatch()

	for _, v := range videos {
		if !v.IsActive {
			batch.Delete(v.YouTubeID)
			continue
		}
		doc := videoDocument{
			Title:        v.Title,
			Description:  v.DescriptionText(),
			Labels:       v.Labels,
			ChannelID:    v.ChannelID,
			ChannelTitle: v.ChannelTitle,
		}
		if err := batch.Index(v.YouTubeID, doc); err != nil {
			log.Printf("Warning: failed to index video %s: %v", v.YouTubeID, err)
		}
	}

	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index videos: %w", err)
	}
	return nil
}

// Rebuild replaces the whole index with videos. Searches see either the old
// or the new index, never a partial one.
func (i *Indexer) Rebuild(videos []storage.Video) error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}
	if err := indexBatch(fresh, videos); err != nil {
		fresh.Close()
		return err
	}

	i.mu.Lock()
	old := i.bleveIndex
	i.bleveIndex = fresh
	i.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Printf("Warning: failed to close previous index: %v", err)
		}
	}
	return nil
}

// Count returns the total number of indexed videos.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.bleveIndex == nil {
		return 0, errClosed
	}
	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		err := i.bleveIndex.Close()
		i.bleveIndex = nil
		return err
	}

	return nil
}

// buildMatchQuery creates a match query for BM25 search.
func buildMatchQuery(searchText string) query.Query {
	return bleve.NewMatchQuery(searchText)
}
