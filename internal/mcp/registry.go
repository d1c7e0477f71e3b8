package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/engine"
)

// invoker binds a tool to a typed facade call. Argument decoding and default
// values live here, per tool, so unknown parameter names are ignored instead
// of silently accepted and missing required parameters fail at the handler
// level, not the router level.
type invoker func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error)

// Tool is one registry entry: a descriptor plus its facade binding.
type Tool struct {
	api.ToolDescriptor
	invoke invoker
}

// Invoke runs the tool against the facade with decoded arguments.
func (t *Tool) Invoke(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
	return t.invoke(ctx, eng, args)
}

// Registry is the fixed, ordered tool catalog. It is populated once at
// construction and read-only afterwards; list order is part of the tools/list
// contract.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

// NewRegistry builds the compiled-in catalog of the ten context tools.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Tool)}

	r.add("context_recent_activities",
		"Get recent tracked activities from the Context Continuity Engine",
		objectSchema(props{
			"hours": intSchema("Look back this many hours (default 24)", 24),
			"limit": intSchema("Max activities to return (default 50)", 50),
		}, nil),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			return eng.RecentActivities(ctx, intArg(args, "hours", 24), intArg(args, "limit", 50))
		})

	r.add("context_search",
		"Semantic search across tracked activities using embeddings",
		objectSchema(props{
			"query": stringSchema("Search query text"),
			"limit": intSchema("Max results (default 10)", 10),
		}, []string{"query"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			query, err := requiredString(args, "query")
			if err != nil {
				return nil, err
			}
			return eng.Search(ctx, query, intArg(args, "limit", 10))
		})

	r.add("context_predict",
		"Predict relevant context for an activity description",
		objectSchema(props{
			"activity_description": stringSchema("Description of the current activity"),
			"max_results":          intSchema("Max predictions (default 5)", 5),
		}, []string{"activity_description"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			desc, err := requiredString(args, "activity_description")
			if err != nil {
				return nil, err
			}
			return eng.Predict(ctx, desc, intArg(args, "max_results", 5))
		})

	r.add("context_suggestions",
		"Get actionable context suggestions (related files, apps, next actions)",
		objectSchema(props{
			"activity_description": stringSchema("Description of the current activity"),
		}, []string{"activity_description"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			desc, err := requiredString(args, "activity_description")
			if err != nil {
				return nil, err
			}
			return eng.Suggestions(ctx, desc)
		})

	r.add("context_related",
		"Get activities related to a given activity via the temporal graph",
		objectSchema(props{
			"activity_id": stringSchema("Activity ID to find relations for"),
			"max_depth":   intSchema("Max graph depth (default 2)", 2),
		}, []string{"activity_id"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			id, err := requiredString(args, "activity_id")
			if err != nil {
				return nil, err
			}
			return eng.Related(ctx, id, intArg(args, "max_depth", 2))
		})

	r.add("context_stats",
		"Get statistics from all Context Continuity Engine components",
		objectSchema(props{}, nil),
		func(ctx context.Context, eng engine.Facade, _ map[string]any) (any, error) {
			return eng.Stats(ctx)
		})

	r.add("context_list_contexts",
		"List tracked work contexts ordered by last active",
		objectSchema(props{
			"limit": intSchema("Max contexts to return (default 20)", 20),
		}, nil),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			return eng.ListContexts(ctx, intArg(args, "limit", 20))
		})

	r.add("context_cleanup",
		"Remove activity data older than N days",
		objectSchema(props{
			"days": intSchema("Retain data for this many days (default 90)", 90),
		}, nil),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			return eng.Cleanup(ctx, intArg(args, "days", 90))
		})

	r.add("context_privacy_blacklist",
		"Add or remove privacy blacklist entries for apps or directories",
		objectSchema(props{
			"type":   enumSchema("Type of blacklist entry", "app", "directory"),
			"value":  stringSchema("App name or directory path"),
			"action": enumSchema("Add or remove the entry", "add", "remove"),
		}, []string{"type", "value", "action"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			entryType, err := requiredString(args, "type")
			if err != nil {
				return nil, err
			}
			value, err := requiredString(args, "value")
			if err != nil {
				return nil, err
			}
			action, err := requiredString(args, "action")
			if err != nil {
				return nil, err
			}
			return eng.PrivacyBlacklist(ctx, entryType, value, action)
		})

	r.add("context_create_context",
		"Create or update a named work context",
		objectSchema(props{
			"name":        stringSchema("Context name"),
			"description": stringSchema("Context description"),
			"tags":        arraySchema("Tags for the context"),
		}, []string{"name"}),
		func(ctx context.Context, eng engine.Facade, args map[string]any) (any, error) {
			name, err := requiredString(args, "name")
			if err != nil {
				return nil, err
			}
			return eng.CreateContext(ctx, name, stringArg(args, "description", ""), stringListArg(args, "tags"))
		})

	return r
}

func (r *Registry) add(name, description string, schema *jsonschema.Schema, fn invoker) {
	t := &Tool{
		ToolDescriptor: api.ToolDescriptor{
			Name:        name,
			Description: description,
			InputSchema: schema,
		},
		invoke: fn,
	}
	r.tools = append(r.tools, t)
	r.byName[name] = t
}

// Descriptors returns the catalog in insertion order.
func (r *Registry) Descriptors() []api.ToolDescriptor {
	out := make([]api.ToolDescriptor, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.ToolDescriptor
	}
	return out
}

// Resolve looks up a tool by exact, case-sensitive name.
func (r *Registry) Resolve(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Schema builders.

type props map[string]*jsonschema.Schema

func objectSchema(properties props, required []string) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}
	if len(required) > 0 {
		s.Required = required
	}
	return s
}

func stringSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

// enumSchema declares a string parameter restricted to the given values.
func enumSchema(description string, values ...string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Description: description, Enum: enum}
}

// intSchema declares an optional integer parameter with its default value, so
// the advertised catalog carries the default the invoker applies.
func intSchema(description string, def int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,
		Default:     json.RawMessage(strconv.Itoa(def)),
	}
}

func arraySchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

// Argument decoding helpers. JSON numbers arrive as float64; integer
// parameters accept any JSON number and truncate.

func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %s must be a non-empty string", key)
	}
	return s, nil
}

func stringListArg(args map[string]any, key string) []string {
	v, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
