package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/tkingovr/context-continuity/api"
)

// CodeMethodNotFound is the JSON-RPC error code for an unknown method. Unknown
// tools reuse it with a distinguishing message, per protocol convention.
const CodeMethodNotFound = -32601

// NewResult creates a successful JSON-RPC response carrying the marshaled result.
func NewResult(id json.RawMessage, result any) (*api.JSONRPCMessage, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &api.JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  data,
	}, nil
}

// NewMethodNotFound creates an error response for an unsupported RPC method.
func NewMethodNotFound(id json.RawMessage, method string) *api.JSONRPCMessage {
	return newError(id, fmt.Sprintf("Unknown method: %s", method))
}

// NewToolNotFound creates an error response for a tools/call naming a tool
// that is not in the registry.
func NewToolNotFound(id json.RawMessage, name string) *api.JSONRPCMessage {
	return newError(id, fmt.Sprintf("Unknown tool: %s", name))
}

func newError(id json.RawMessage, message string) *api.JSONRPCMessage {
	return &api.JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Error: &api.JSONRPCError{
			Code:    CodeMethodNotFound,
			Message: message,
		},
	}
}

// NewToolResult wraps a tool's success payload in the MCP content envelope:
// the payload is serialized to JSON and carried as a single text block. A
// payload that cannot be serialized is reported as a handler-level failure.
func NewToolResult(id json.RawMessage, payload any) *api.JSONRPCMessage {
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return NewToolFailure(id, fmt.Sprintf("serializing tool result: %v", err))
	}
	msg, err := NewResult(id, api.CallToolResult{
		Content: []api.ContentBlock{{Type: "text", Text: string(text)}},
	})
	if err != nil {
		return NewToolFailure(id, fmt.Sprintf("serializing tool result: %v", err))
	}
	return msg
}

// NewToolFailure wraps a handler-level failure in a successful envelope with
// isError set. The failure is never surfaced as a JSON-RPC error: the tool was
// dispatched and ran, it just did not succeed.
func NewToolFailure(id json.RawMessage, message string) *api.JSONRPCMessage {
	text, _ := json.Marshal(map[string]string{
		"status":  api.StatusError,
		"message": message,
	})
	result := api.CallToolResult{
		Content: []api.ContentBlock{{Type: "text", Text: string(text)}},
		IsError: true,
	}
	data, _ := json.Marshal(result)
	return &api.JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  data,
	}
}

// Marshal encodes a JSONRPCMessage to JSON bytes.
func Marshal(msg *api.JSONRPCMessage) ([]byte, error) {
	return json.Marshal(msg)
}
