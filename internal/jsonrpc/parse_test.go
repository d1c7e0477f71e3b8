package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestParse_ValidRequest(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_search","arguments":{"query":"invoice"}}}`)
	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Method != "tools/call" {
		t.Errorf("expected method tools/call, got %q", msg.Method)
	}
	if !msg.IsRequest() {
		t.Error("expected IsRequest() to be true")
	}
	if msg.IsNotification() {
		t.Error("expected IsNotification() to be false")
	}
}

func TestParse_Notification(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !msg.IsNotification() {
		t.Error("expected IsNotification() to be true")
	}
	if msg.IsRequest() {
		t.Error("expected IsRequest() to be false")
	}
}

func TestParse_StringID(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":"abc-1","method":"tools/list"}`)
	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(msg.ID) != `"abc-1"` {
		t.Errorf("expected raw id %q, got %q", `"abc-1"`, msg.ID)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParse_WrongVersion(t *testing.T) {
	if _, err := Parse([]byte(`{"jsonrpc":"1.0","id":1,"method":"test"}`)); err == nil {
		t.Fatal("expected error for wrong version")
	}
}

func TestParse_MissingVersion(t *testing.T) {
	if _, err := Parse([]byte(`{"id":1,"method":"tools/list"}`)); err == nil {
		t.Fatal("expected error for absent jsonrpc field")
	}
}

func TestDecodeToolCall(t *testing.T) {
	msg, _ := Parse([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"context_cleanup","arguments":{"days":30}}}`))

	tc, err := DecodeToolCall(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Name != "context_cleanup" {
		t.Errorf("expected tool name context_cleanup, got %q", tc.Name)
	}

	args, err := DecodeArguments(tc.Arguments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args["days"] != float64(30) {
		t.Errorf("expected days 30, got %v", args["days"])
	}
}

func TestDecodeToolCall_NoParams(t *testing.T) {
	msg, _ := Parse([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`))

	tc, err := DecodeToolCall(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Name != "" {
		t.Errorf("expected empty tool name, got %q", tc.Name)
	}
}

func TestDecodeArguments_Nil(t *testing.T) {
	args, err := DecodeArguments(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args == nil || len(args) != 0 {
		t.Errorf("expected empty map, got %v", args)
	}
}

func TestDecodeArguments_Invalid(t *testing.T) {
	if _, err := DecodeArguments(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatal("expected error for non-object arguments")
	}
}
