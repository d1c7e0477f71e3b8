package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tkingovr/context-continuity/api"
)

// fakeFacade is a test double for the engine facade. Methods succeed with
// canned payloads unless err is set.
type fakeFacade struct {
	err         error
	cleanupDays int
	lastQuery   string
}

func (f *fakeFacade) RecentActivities(_ context.Context, hours, limit int) (*api.RecentActivitiesResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.RecentActivitiesResult{Status: api.StatusSuccess, Activities: []*api.Activity{}}, nil
}

func (f *fakeFacade) Search(_ context.Context, query string, limit int) (*api.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastQuery = query
	return &api.SearchResult{Status: api.StatusSuccess, Results: []api.Match{}}, nil
}

func (f *fakeFacade) Predict(_ context.Context, description string, maxResults int) (*api.PredictResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.PredictResult{Status: api.StatusSuccess, Predictions: []api.Prediction{}}, nil
}

func (f *fakeFacade) Suggestions(_ context.Context, description string) (*api.SuggestionsResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.SuggestionsResult{Status: api.StatusSuccess, Suggestions: []api.Suggestion{}}, nil
}

func (f *fakeFacade) Related(_ context.Context, activityID string, maxDepth int) (*api.RelatedResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.RelatedResult{Status: api.StatusSuccess, Related: []api.RelatedActivity{}}, nil
}

func (f *fakeFacade) Stats(_ context.Context) (*api.StatsResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.StatsResult{Status: api.StatusSuccess, Stats: &api.EngineStats{}}, nil
}

func (f *fakeFacade) ListContexts(_ context.Context, limit int) (*api.ContextListResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.ContextListResult{Status: api.StatusSuccess, Contexts: []*api.WorkContext{}}, nil
}

func (f *fakeFacade) Cleanup(_ context.Context, days int) (*api.CleanupResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cleanupDays = days
	return &api.CleanupResult{Status: api.StatusSuccess, DeletedRecords: 3, RetentionDays: days}, nil
}

func (f *fakeFacade) PrivacyBlacklist(_ context.Context, entryType, value, action string) (*api.BlacklistResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.BlacklistResult{Status: api.StatusSuccess, CurrentStats: &api.PrivacyStats{}}, nil
}

func (f *fakeFacade) CreateContext(_ context.Context, name, description string, tags []string) (*api.CreateContextResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.CreateContextResult{Status: api.StatusSuccess, ContextID: "ctx-1", Name: name}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(fake *fakeFacade) *Router {
	info := api.ServerInfo{Name: "context-continuity", Version: "1.0.0"}
	if fake == nil {
		return NewRouter(testLogger(), NewRegistry(), nil, info)
	}
	return NewRouter(testLogger(), NewRegistry(), fake, info)
}

func request(t *testing.T, raw string) *api.JSONRPCMessage {
	t.Helper()
	var msg api.JSONRPCMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("bad test request: %v", err)
	}
	return &msg
}

func TestRouter_Initialize(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
	if resp == nil {
		t.Fatal("expected a response")
	}
	var result api.InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if result.ProtocolVersion != api.ProtocolVersion {
		t.Errorf("expected protocol version %q, got %q", api.ProtocolVersion, result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "context-continuity" {
		t.Errorf("unexpected server name %q", result.ServerInfo.Name)
	}
}

func TestRouter_InitializeIdempotent(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	first := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	second := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":2,"method":"initialize"}`))
	if string(first.Result) != string(second.Result) {
		t.Errorf("initialize responses differ:\n%s\n%s", first.Result, second.Result)
	}
}

func TestRouter_InitializeSucceedsWhenEngineUnavailable(t *testing.T) {
	r := newTestRouter(nil)
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	if resp == nil || resp.Error != nil {
		t.Fatal("handshake must succeed regardless of engine availability")
	}
}

func TestRouter_NotificationGetsNoResponse(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if resp != nil {
		t.Fatalf("notification must not receive a response, got %+v", resp)
	}
}

func TestRouter_ToolsList(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	var result api.ListToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if len(result.Tools) != len(wantTools) {
		t.Fatalf("expected %d tools, got %d", len(wantTools), len(result.Tools))
	}
	for i, want := range wantTools {
		if result.Tools[i].Name != want {
			t.Errorf("tool %d: expected %q, got %q", i, want, result.Tools[i].Name)
		}
	}
}

func TestRouter_ToolsListUnavailable(t *testing.T) {
	r := newTestRouter(nil)
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	if !strings.Contains(string(resp.Result), `"tools":[]`) {
		t.Errorf("expected empty tools array, got %s", resp.Result)
	}
}

func TestRouter_UnknownMethod(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "resources/list") {
		t.Errorf("expected message to name the method, got %q", resp.Error.Message)
	}
}

func TestRouter_UnknownTool(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_bogus","arguments":{}}}`))
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "context_bogus") {
		t.Errorf("expected message to contain the unknown name, got %q", resp.Error.Message)
	}
}

func TestRouter_HandlerFailureIsNotProtocolError(t *testing.T) {
	r := newTestRouter(&fakeFacade{err: errors.New("store corrupt")})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_stats","arguments":{}}}`))
	if resp.Error != nil {
		t.Fatal("handler failure must not populate the JSON-RPC error field")
	}
	var result api.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if !result.IsError {
		t.Error("expected isError true")
	}
	if !strings.Contains(result.Content[0].Text, "store corrupt") {
		t.Errorf("expected failure text to contain the error, got %q", result.Content[0].Text)
	}
}

func TestRouter_CallUnavailableEngine(t *testing.T) {
	r := newTestRouter(nil)
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_stats","arguments":{}}}`))
	if resp.Error != nil {
		t.Fatal("unavailability is a handler-level failure, not a protocol error")
	}
	var result api.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content[0].Text, "unavailable") {
		t.Errorf("expected engine-unavailable failure, got %+v", result)
	}
}

func TestRouter_CleanupDefaultDays(t *testing.T) {
	fake := &fakeFacade{}
	r := newTestRouter(fake)
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"context_cleanup","arguments":{}}}`))

	if fake.cleanupDays != 90 {
		t.Errorf("expected default days 90, got %d", fake.cleanupDays)
	}
	var result api.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	var payload api.CleanupResult
	if err := json.Unmarshal([]byte(result.Content[0].Text), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.Status != "success" || payload.RetentionDays != 90 || payload.DeletedRecords != 3 {
		t.Errorf("unexpected cleanup payload: %+v", payload)
	}
}

func TestRouter_MissingRequiredArgumentIsHandlerFailure(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_search","arguments":{}}}`))
	if resp.Error != nil {
		t.Fatal("missing required argument must be a handler-level failure")
	}
	var result api.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content[0].Text, "query") {
		t.Errorf("expected missing-query failure, got %+v", result)
	}
}

func TestRouter_UnknownArgumentsIgnored(t *testing.T) {
	fake := &fakeFacade{}
	r := newTestRouter(fake)
	resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_search","arguments":{"query":"tax report","frobnicate":true}}}`))
	if resp.Error != nil {
		t.Fatalf("unexpected protocol error: %+v", resp.Error)
	}
	if fake.lastQuery != "tax report" {
		t.Errorf("expected query to pass through, got %q", fake.lastQuery)
	}
}

func TestRouter_ResponseIDMatches(t *testing.T) {
	r := newTestRouter(&fakeFacade{})
	for _, id := range []string{`42`, `"req-7"`} {
		resp := r.Handle(context.Background(), request(t, `{"jsonrpc":"2.0","id":`+id+`,"method":"tools/list"}`))
		if string(resp.ID) != id {
			t.Errorf("expected id %s, got %s", id, resp.ID)
		}
	}
}
