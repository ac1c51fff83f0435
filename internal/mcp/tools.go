package mcp

import (
	"strings"

	"github.com/tingleradar/tingle-radar/internal/tagging"
)

// handleToolsList returns the tool definitions with their input schemas.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	tagList := strings.Join(tagging.VotableTags(), ", ")

	tools := []map[string]interface{}{
		{
			"name": "radar_classify",
			"description": `Tag ASMR video text with the rule-based classifier.

WHEN TO USE: To see which trigger, talking-style, roleplay, or language tags
a title/description would receive before it is in the catalog.

Returns: Sorted list of tags.`,
			"inputSchema": objectSchema(map[string]interface{}{
				"title":       stringProp("Video title"),
				"description": stringProp("Video description"),
				"labels":      arrayProp("Creator-supplied labels"),
			}),
		},
		{
			"name": "radar_browse",
			"description": `Browse the ASMR catalog with filters and pagination.

Filters combine with AND; tags match when any requested tag is present.
duration_bucket: short (2-5 min), medium (5-15 min), long (15 min+).
sort: published_desc (default), views_desc, likes_desc.`,
			"inputSchema": objectSchema(map[string]interface{}{
				"page":            intProp("1-indexed page number"),
				"page_size":       intProp("Items per page"),
				"channel_id":      stringProp("Restrict to one channel"),
				"channel_ids":     arrayProp("Restrict to any of these channels (overrides channel_id)"),
				"duration_bucket": enumProp("Duration bucket", "short", "medium", "long"),
				"tags":            arrayProp("Effective tags; any match"),
				"language":        enumProp("Title language", "ja", "ko", "zh", "en"),
				"sort":            enumProp("Sort order", "published_desc", "views_desc", "likes_desc"),
			}),
		},
		{
			"name": "radar_vote",
			"description": "Vote a tag up (1) or down (-1) on a video. A repeat vote from the same fingerprint replaces the previous one. Tags: " + tagList,
			"inputSchema": objectSchema(map[string]interface{}{
				"video_id":    stringProp("YouTube video id"),
				"tag":         stringProp("Tag to vote on"),
				"vote":        enumIntProp("Vote direction", 1, -1),
				"fingerprint": stringProp("Stable anonymous voter key"),
			}, "video_id", "tag", "vote"),
		},
		{
			"name":        "radar_scores",
			"description": "Current vote score per tag for a video. Tags with no votes are absent.",
			"inputSchema": objectSchema(map[string]interface{}{
				"video_id": stringProp("YouTube video id"),
			}, "video_id"),
		},
		{
			"name":        "radar_rankings",
			"description": "The three most recent weekly ranking snapshots, top 10 each, with effective tags.",
			"inputSchema": objectSchema(map[string]interface{}{}),
		},
		{
			"name":        "radar_search",
			"description": "Full-text search over titles, descriptions, labels, and channel names.",
			"inputSchema": objectSchema(map[string]interface{}{
				"query": stringProp("Search text"),
				"limit": intProp("Maximum results"),
			}, "query"),
		},
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func intProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func arrayProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": desc,
	}
}

func enumProp(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

func enumIntProp(desc string, values ...int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc, "enum": values}
}
