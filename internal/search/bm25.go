package search

import (
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is used when a search passes limit <= 0.
const DefaultLimit = 20

var errClosed = errors.New("search index closed")

var resultFields = []string{"title", "channel_title"}

// Search performs BM25 keyword search using Bleve.
func (i *Indexer) Search(text string, limit int) ([]Result, error) {
	return i.run(buildMatchQuery(text), limit)
}

// SearchChannel performs BM25 search scoped to one channel.
func (i *Indexer) SearchChannel(text, channelID string, limit int) ([]Result, error) {
	channelQuery := bleve.NewTermQuery(channelID)
	channelQuery.SetField("channel_id")

	return i.run(bleve.NewConjunctionQuery(buildMatchQuery(text), channelQuery), limit)
}

func (i *Indexer) run(q query.Query, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.bleveIndex == nil {
		return nil, errClosed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchRequest.Fields = resultFields

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve search results to Result values.
func convertBleveResults(results *bleve.SearchResult) []Result {
	out := make([]Result, 0, len(results.Hits))

	for _, hit := range results.Hits {
		title, _ := hit.Fields["title"].(string)
		channel, _ := hit.Fields["channel_title"].(string)

		out = append(out, Result{
			VideoID:      hit.ID,
			Title:        title,
			ChannelTitle: channel,
			Score:        hit.Score,
		})
	}

	return out
}
