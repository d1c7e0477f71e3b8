package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/engine"
	"github.com/tkingovr/context-continuity/internal/jsonrpc"
)

// Router maps protocol methods to behavior and tool names to facade calls.
// Dispatch is stateless: tools/list and tools/call are accepted whether or not
// the client completed the initialize handshake, so a client that skips it
// still gets deterministic behavior.
type Router struct {
	logger   *slog.Logger
	registry *Registry
	engine   engine.Facade // nil when the engine failed to construct
	info     api.ServerInfo
}

// NewRouter creates a router. A nil facade marks the engine unavailable:
// initialize still succeeds, tools/list reports an empty catalog, and every
// tools/call fails at the handler level.
func NewRouter(logger *slog.Logger, registry *Registry, eng engine.Facade, info api.ServerInfo) *Router {
	return &Router{
		logger:   logger,
		registry: registry,
		engine:   eng,
		info:     info,
	}
}

// Handle processes one decoded message and returns the response to write, or
// nil when the message is a notification and must receive no response.
func (r *Router) Handle(ctx context.Context, msg *api.JSONRPCMessage) *api.JSONRPCMessage {
	// Absence of an id means notification: stay silent.
	if msg.ID == nil {
		return nil
	}

	switch msg.Method {
	case "initialize":
		// A second initialize is idempotent and returns the identical envelope.
		return r.result(msg.ID, api.InitializeResult{
			ProtocolVersion: api.ProtocolVersion,
			ServerInfo:      r.info,
		})

	case "notifications/initialized":
		// Sent with an id by a confused client; still treated as an
		// acknowledgment and discarded.
		return nil

	case "tools/list":
		tools := []api.ToolDescriptor{}
		if r.engine != nil {
			tools = r.registry.Descriptors()
		}
		return r.result(msg.ID, api.ListToolsResult{Tools: tools})

	case "tools/call":
		return r.callTool(ctx, msg)

	default:
		return jsonrpc.NewMethodNotFound(msg.ID, msg.Method)
	}
}

func (r *Router) callTool(ctx context.Context, msg *api.JSONRPCMessage) *api.JSONRPCMessage {
	params, err := jsonrpc.DecodeToolCall(msg)
	if err != nil {
		return jsonrpc.NewToolFailure(msg.ID, err.Error())
	}

	tool, ok := r.registry.Resolve(params.Name)
	if !ok {
		return jsonrpc.NewToolNotFound(msg.ID, params.Name)
	}

	if r.engine == nil {
		return jsonrpc.NewToolFailure(msg.ID, "context engine unavailable")
	}

	args, err := jsonrpc.DecodeArguments(params.Arguments)
	if err != nil {
		return jsonrpc.NewToolFailure(msg.ID, err.Error())
	}

	payload, err := r.invoke(ctx, tool, args)
	if err != nil {
		r.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return jsonrpc.NewToolFailure(msg.ID, err.Error())
	}
	return jsonrpc.NewToolResult(msg.ID, payload)
}

// invoke runs the tool binding, converting a panic during execution into an
// ordinary handler-level failure so one faulting tool never ends the session.
func (r *Router) invoke(ctx context.Context, tool *Tool, args map[string]any) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return tool.Invoke(ctx, r.engine, args)
}

func (r *Router) result(id json.RawMessage, payload any) *api.JSONRPCMessage {
	msg, err := jsonrpc.NewResult(id, payload)
	if err != nil {
		// Unreachable for the static payload types above.
		r.logger.Error("failed to build response", "error", err)
		return nil
	}
	return msg
}
