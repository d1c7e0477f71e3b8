// Package engine exposes the context engine behind a narrow facade: one
// operation per tool, no protocol knowledge.
package engine

import (
	"context"

	"github.com/tkingovr/context-continuity/api"
)

// Facade is the tool surface over the context engine. Each operation is
// synchronous from the caller's point of view and returns either a typed
// success payload or an error the caller reports as a handler-level failure.
type Facade interface {
	// RecentActivities lists activities from the past hours, newest first.
	RecentActivities(ctx context.Context, hours, limit int) (*api.RecentActivitiesResult, error)

	// Search runs semantic search across tracked activities.
	Search(ctx context.Context, query string, limit int) (*api.SearchResult, error)

	// Predict returns relevant context predictions for an activity description.
	Predict(ctx context.Context, description string, maxResults int) (*api.PredictResult, error)

	// Suggestions returns actionable context suggestions for a description.
	Suggestions(ctx context.Context, description string) (*api.SuggestionsResult, error)

	// Related walks the temporal graph from an activity id.
	Related(ctx context.Context, activityID string, maxDepth int) (*api.RelatedResult, error)

	// Stats aggregates statistics from all engine components.
	Stats(ctx context.Context) (*api.StatsResult, error)

	// ListContexts lists work contexts ordered by last activity.
	ListContexts(ctx context.Context, limit int) (*api.ContextListResult, error)

	// Cleanup removes activity data older than days and decays temporal
	// graph edges.
	Cleanup(ctx context.Context, days int) (*api.CleanupResult, error)

	// PrivacyBlacklist adds or removes a privacy blacklist entry.
	PrivacyBlacklist(ctx context.Context, entryType, value, action string) (*api.BlacklistResult, error)

	// CreateContext creates or updates a named work context.
	CreateContext(ctx context.Context, name, description string, tags []string) (*api.CreateContextResult, error)
}
