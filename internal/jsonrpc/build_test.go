package jsonrpc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tkingovr/context-continuity/api"
)

func TestNewResult(t *testing.T) {
	msg, err := NewResult(json.RawMessage(`1`), map[string]string{"ok": "yes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.JSONRPC != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %q", msg.JSONRPC)
	}
	if string(msg.ID) != "1" {
		t.Errorf("expected id 1, got %q", msg.ID)
	}
	if msg.Error != nil {
		t.Error("expected no error field")
	}
}

func TestNewToolNotFound(t *testing.T) {
	msg := NewToolNotFound(json.RawMessage(`5`), "context_frobnicate")
	if msg.Error == nil {
		t.Fatal("expected error field")
	}
	if msg.Error.Code != CodeMethodNotFound {
		t.Errorf("expected code %d, got %d", CodeMethodNotFound, msg.Error.Code)
	}
	if !strings.Contains(msg.Error.Message, "context_frobnicate") {
		t.Errorf("expected message to contain the unknown name, got %q", msg.Error.Message)
	}
	if !strings.HasPrefix(msg.Error.Message, "Unknown tool:") {
		t.Errorf("unexpected message: %q", msg.Error.Message)
	}
}

func TestNewMethodNotFound(t *testing.T) {
	msg := NewMethodNotFound(json.RawMessage(`5`), "resources/list")
	if msg.Error == nil || msg.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected -32601 error, got %+v", msg.Error)
	}
	if !strings.HasPrefix(msg.Error.Message, "Unknown method:") {
		t.Errorf("unexpected message: %q", msg.Error.Message)
	}
}

func TestNewToolResult_RoundTrip(t *testing.T) {
	payload := map[string]any{
		"status": "success",
		"count":  float64(2),
		"items":  []any{"a", "b"},
	}
	msg := NewToolResult(json.RawMessage(`7`), payload)

	var result api.CallToolResult
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if result.IsError {
		t.Error("expected isError to be unset")
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("expected one text block, got %+v", result.Content)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &decoded); err != nil {
		t.Fatalf("decoding text payload: %v", err)
	}
	if decoded["status"] != payload["status"] || decoded["count"] != payload["count"] {
		t.Errorf("round-trip mismatch: %v vs %v", decoded, payload)
	}
}

func TestNewToolFailure(t *testing.T) {
	msg := NewToolFailure(json.RawMessage(`9`), "engine exploded")
	if msg.Error != nil {
		t.Fatal("handler failures must not use the JSON-RPC error field")
	}

	var result api.CallToolResult
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if !result.IsError {
		t.Error("expected isError true")
	}
	var failure map[string]string
	if err := json.Unmarshal([]byte(result.Content[0].Text), &failure); err != nil {
		t.Fatalf("decoding failure text: %v", err)
	}
	if failure["status"] != "error" || failure["message"] != "engine exploded" {
		t.Errorf("unexpected failure payload: %v", failure)
	}
}
