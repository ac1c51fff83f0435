package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tingleradar/tingle-radar/internal/radar"
	"github.com/tingleradar/tingle-radar/internal/search"
	"github.com/tingleradar/tingle-radar/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := storage.NewStorageAt(filepath.Join(t.TempDir(), "radar.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for i, title := range []string{"ASMR Tapping on glass", "Binaural ear cleaning roleplay"} {
		v := storage.Video{
			YouTubeID:    []string{"v1", "v2"}[i],
			Title:        title,
			ChannelID:    "UC1",
			ChannelTitle: "Quiet Room",
			PublishedAt:  time.Date(2026, 3, 1, i, 0, 0, 0, time.UTC),
			IsActive:     true,
		}
		if err := store.UpsertVideo(ctx, v); err != nil {
			t.Fatalf("UpsertVideo failed: %v", err)
		}
	}

	idx, err := search.NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	svc := radar.NewService(store, radar.Options{Index: idx})
	if _, err := svc.Reindex(ctx); err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	return NewServer(svc, 10)
}

// roundTrip feeds lines to the server and decodes one response per line.
func roundTrip(t *testing.T, s *Server, lines ...string) []MCPResponse {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := s.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var responses []MCPResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func callText(t *testing.T, resp MCPResponse) string {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result is %T", resp.Result)
	}
	content := result["content"].([]interface{})
	return content[0].(map[string]interface{})["text"].(string)
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)
	responses := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	result := responses[0].Result.(map[string]interface{})
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "tingle-radar" {
		t.Errorf("serverInfo.name = %v", info["name"])
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)
	responses := roundTrip(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	tools := responses[0].Result.(map[string]interface{})["tools"].([]interface{})
	want := []string{"radar_classify", "radar_browse", "radar_vote", "radar_scores", "radar_rankings", "radar_search"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		tool := tools[i].(map[string]interface{})
		if tool["name"] != name {
			t.Errorf("tools[%d] = %v, want %s", i, tool["name"], name)
		}
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("%s has no inputSchema", name)
		}
	}
}

func TestNotificationsAndBlankLines(t *testing.T) {
	s := newTestServer(t)
	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	)

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != -32601 {
		t.Errorf("unknown method error = %+v", responses[0].Error)
	}
}

func TestParseError(t *testing.T) {
	s := newTestServer(t)
	responses := roundTrip(t, s, `{not json`)

	if responses[0].Error == nil || responses[0].Error.Code != -32700 {
		t.Errorf("parse error = %+v", responses[0].Error)
	}
}

func TestToolsCall(t *testing.T) {
	tests := []struct {
		name     string
		call     string
		contains []string
	}{
		{
			name:     "classify",
			call:     `{"name":"radar_classify","arguments":{"title":"Whisper ear cleaning","labels":["binaural"]}}`,
			contains: []string{`"binaural"`, `"ear_cleaning"`, `"whisper"`},
		},
		{
			name:     "browse by tag",
			call:     `{"name":"radar_browse","arguments":{"tags":["tapping"]}}`,
			contains: []string{`"total": 1`, `"youtube_id": "v1"`},
		},
		{
			name:     "browse comma tags",
			call:     `{"name":"radar_browse","arguments":{"tags":"tapping,binaural","page_size":1}}`,
			contains: []string{`"total": 2`, `"page_size": 1`},
		},
		{
			name:     "vote",
			call:     `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping","vote":-1,"fingerprint":"fp"}}`,
			contains: []string{`"score": -1`},
		},
		{
			name:     "scores empty",
			call:     `{"name":"radar_scores","arguments":{"video_id":"v2"}}`,
			contains: []string{`{}`},
		},
		{
			name:     "rankings empty",
			call:     `{"name":"radar_rankings","arguments":{}}`,
			contains: []string{`[]`},
		},
		{
			name:     "search",
			call:     `{"name":"radar_search","arguments":{"query":"glass"}}`,
			contains: []string{`"v1"`},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			line := `{"jsonrpc":"2.0","id":` + string(rune('0'+i)) + `,"method":"tools/call","params":` + tt.call + `}`
			text := callText(t, roundTrip(t, s, line)[0])
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("result missing %s:\n%s", want, text)
				}
			}
		})
	}
}

func TestToolsCall_Errors(t *testing.T) {
	tests := []struct {
		name string
		call string
		code int
	}{
		{"unknown tool", `{"name":"hub_list","arguments":{}}`, -32602},
		{"invalid tag", `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"shouting","vote":1}}`, -32000},
		{"missing vote", `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping"}}`, -32000},
		{"fractional vote", `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping","vote":-1.7}}`, -32000},
		{"large vote", `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping","vote":2}}`, -32000},
		{"vote with trailing junk", `{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping","vote":"1abc"}}`, -32000},
		{"unknown video", `{"name":"radar_vote","arguments":{"video_id":"nope","tag":"tapping","vote":1}}`, -32000},
		{"bad bucket", `{"name":"radar_browse","arguments":{"duration_bucket":"epic"}}`, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":`+tt.call+`}`)[0]
			if resp.Error == nil {
				t.Fatalf("expected error, got %+v", resp.Result)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %d, want %d (%s)", resp.Error.Code, tt.code, resp.Error.Message)
			}
		})
	}
}

func TestVoteArg(t *testing.T) {
	tests := []struct {
		vote interface{}
		want int
	}{
		{1.0, 1},
		{-1.0, -1},
		{"1", 1},
		{"+1", 1},
		{" -1 ", -1},
		{-1.7, 0},
		{0.5, 0},
		{2.0, 0},
		{"1abc", 0},
		{"up", 0},
		{true, 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := voteArg(map[string]interface{}{"vote": tt.vote}); got != tt.want {
			t.Errorf("voteArg(%#v) = %d, want %d", tt.vote, got, tt.want)
		}
	}
}

func TestToolsCall_RejectedVoteWritesNothing(t *testing.T) {
	s := newTestServer(t)
	roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"radar_vote","arguments":{"video_id":"v1","tag":"tapping","vote":-1.7}}}`)

	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"radar_scores","arguments":{"video_id":"v1"}}}`)[0]
	if resp.Error != nil {
		t.Fatalf("radar_scores failed: %+v", resp.Error)
	}
	if text := callText(t, resp); strings.Contains(text, "tapping") {
		t.Errorf("rejected vote was recorded: %s", text)
	}
}

func TestStringListArg(t *testing.T) {
	args := map[string]interface{}{
		"list":  []interface{}{"a", " ", "b", 3},
		"comma": "a, ,b",
	}
	if got := stringListArg(args, "list"); strings.Join(got, "|") != "a|b" {
		t.Errorf("list = %v", got)
	}
	if got := stringListArg(args, "comma"); strings.Join(got, "|") != "a|b" {
		t.Errorf("comma = %v", got)
	}
	if got := stringListArg(args, "missing"); got != nil {
		t.Errorf("missing = %v", got)
	}
}
