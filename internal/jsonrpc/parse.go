package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/tkingovr/context-continuity/api"
)

// Parse decodes a raw JSON byte slice into a JSONRPCMessage. A message that
// does not declare version 2.0 is a framing error.
func Parse(data []byte) (*api.JSONRPCMessage, error) {
	var msg api.JSONRPCMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC message: %w", err)
	}
	if msg.JSONRPC != "2.0" {
		return nil, fmt.Errorf("unsupported JSON-RPC version: %q", msg.JSONRPC)
	}
	return &msg, nil
}

// DecodeToolCall extracts the tool name and arguments from tools/call params.
// A missing params object yields empty params rather than an error; the router
// treats the resulting empty name as an unknown tool.
func DecodeToolCall(msg *api.JSONRPCMessage) (*api.ToolCallParams, error) {
	if msg.Params == nil {
		return &api.ToolCallParams{}, nil
	}
	var params api.ToolCallParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, fmt.Errorf("decoding tools/call params: %w", err)
	}
	return &params, nil
}

// DecodeArguments unmarshals raw tool arguments into a generic map.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	if raw == nil {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decoding tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
