/*
Package mcp implements an MCP server that exposes the radar operations as
tools.

The server uses stdio transport and exposes 6 tools:
  - radar_classify: Tag arbitrary title/description/labels text
  - radar_browse: Filtered, paginated catalog browse
  - radar_vote: Vote a tag up or down on a video
  - radar_scores: Current vote scores for a video
  - radar_rankings: The latest weekly ranking snapshots
  - radar_search: Full-text search over the catalog
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tingleradar/tingle-radar/internal/catalog"
	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/rankings"
	"github.com/tingleradar/tingle-radar/internal/tagging"
	"github.com/tingleradar/tingle-radar/internal/version"
)

// Radar is the subset of radar.Service the tools call.
type Radar interface {
	ClassifyFields(f tagging.Fields) []string
	Browse(ctx context.Context, f catalog.Filters, p catalog.Page) (catalog.Result, error)
	SubmitVote(ctx context.Context, videoID, tag, fingerprint string, direction int) (int, error)
	ScoresForItem(ctx context.Context, videoID string) (map[string]int, error)
	WeeklyRankings(ctx context.Context) ([]rankings.List, error)
	Search(ctx context.Context, query string, limit int) ([]radar.SearchHit, error)
}

// Server represents the tingle-radar MCP server.
type Server struct {
	radar           Radar
	defaultPageSize int
}

// NewServer creates a new MCP server over r.
func NewServer(r Radar, defaultPageSize int) *Server {
	if defaultPageSize <= 0 {
		defaultPageSize = 50
	}
	return &Server{radar: r, defaultPageSize: defaultPageSize}
}

// Run serves line-delimited JSON-RPC requests from in, writing responses to
// out. It blocks until in is exhausted or ctx is done.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		response, err := s.handleRequest(ctx, line)
		if err != nil {
			s.sendError(out, err)
			continue
		}

		if response != nil {
			s.sendResponse(out, response)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes an incoming MCP request. Notifications get no
// response.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch {
	case req.Method == "initialize":
		return s.handleInitialize(&req), nil
	case req.Method == "tools/list":
		return s.handleToolsList(&req), nil
	case req.Method == "tools/call":
		return s.handleToolsCall(ctx, &req)
	case strings.HasPrefix(req.Method, "notifications/"):
		return nil, nil
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32601, Message: "Method not found"},
		}, nil
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "tingle-radar",
				"version": version.Version,
			},
		},
	}
}

// handleToolsCall handles tool execution requests.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) (*MCPResponse, error) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	var result interface{}
	var err error

	args := params.Arguments
	switch params.Name {
	case "radar_classify":
		result = s.radar.ClassifyFields(tagging.Fields{
			Title:       stringArg(args, "title"),
			Description: stringArg(args, "description"),
			Labels:      stringListArg(args, "labels"),
		})
	case "radar_browse":
		result, err = s.execBrowse(ctx, args)
	case "radar_vote":
		result, err = s.execVote(ctx, args)
	case "radar_scores":
		result, err = s.radar.ScoresForItem(ctx, stringArg(args, "video_id"))
	case "radar_rankings":
		result, err = s.radar.WeeklyRankings(ctx)
	case "radar_search":
		result, err = s.radar.Search(ctx, stringArg(args, "query"), intArg(args, "limit", 10))
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32602, Message: fmt.Sprintf("Unknown tool: %s", params.Name)},
		}, nil
	}

	var text []byte
	if err == nil {
		text, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32000, Message: err.Error()},
		}, nil
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}, nil
}

func (s *Server) execBrowse(ctx context.Context, args map[string]interface{}) (catalog.Result, error) {
	bucket, err := catalog.ParseBucket(stringArg(args, "duration_bucket"))
	if err != nil {
		return catalog.Result{}, err
	}
	sort, err := catalog.ParseSort(stringArg(args, "sort"))
	if err != nil {
		return catalog.Result{}, err
	}

	f := catalog.Filters{
		ChannelID:  stringArg(args, "channel_id"),
		ChannelIDs: stringListArg(args, "channel_ids"),
		Duration:   bucket,
		Tags:       stringListArg(args, "tags"),
		Language:   strings.ToLower(stringArg(args, "language")),
		Sort:       sort,
	}
	p := catalog.Page{
		Number: intArg(args, "page", 1),
		Size:   intArg(args, "page_size", s.defaultPageSize),
	}
	return s.radar.Browse(ctx, f, p)
}

func (s *Server) execVote(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	videoID := stringArg(args, "video_id")
	tag := stringArg(args, "tag")

	score, err := s.radar.SubmitVote(ctx, videoID, tag, stringArg(args, "fingerprint"), voteArg(args))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"video_id": videoID, "tag": tag, "score": score}, nil
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

// intArg reads a JSON number, falling back to def when absent or not numeric.
func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// voteArg reads the vote direction. Anything other than exactly 1 or -1
// yields 0, which SubmitVote rejects.
func voteArg(args map[string]interface{}) int {
	switch v := args["vote"].(type) {
	case float64:
		if v == 1 || v == -1 {
			return int(v)
		}
	case string:
		switch strings.TrimSpace(v) {
		case "1", "+1":
			return 1
		case "-1":
			return -1
		}
	}
	return 0
}

// stringListArg accepts either a JSON array of strings or a comma-separated
// string.
func stringListArg(args map[string]interface{}, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// sendResponse writes a JSON-RPC response line.
func (s *Server) sendResponse(out io.Writer, resp *MCPResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintln(out, string(data))
}

// sendError writes a parse error response line.
func (s *Server) sendError(out io.Writer, err error) {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   &MCPError{Code: -32700, Message: err.Error()},
	}
	s.sendResponse(out, resp)
}
