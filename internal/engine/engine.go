package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/config"
	"github.com/tkingovr/context-continuity/internal/engine/embed"
	"github.com/tkingovr/context-continuity/internal/engine/graph"
	"github.com/tkingovr/context-continuity/internal/engine/predict"
	"github.com/tkingovr/context-continuity/internal/engine/privacy"
	"github.com/tkingovr/context-continuity/internal/engine/store"
)

// Engine is the production facade implementation backed by the on-disk
// context engine components.
type Engine struct {
	store     *store.Store
	index     *embed.Index
	graph     *graph.Graph
	predictor *predict.Predictor
	privacy   *privacy.Filter
}

var _ Facade = (*Engine)(nil)

// New constructs the engine from configuration. Any component failure makes
// the whole engine unavailable; callers must not use a partially built engine.
func New(cfg *config.Config) (*Engine, error) {
	s, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening activity store: %w", err)
	}
	idx, err := embed.Open(filepath.Join(cfg.DataDir, "embeddings"), cfg.CollectionName, cfg.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("opening embedding index: %w", err)
	}
	g, err := graph.Open(filepath.Join(cfg.DataDir, "temporal_graph.json"), cfg.MaxNodes, cfg.DecayFactor)
	if err != nil {
		return nil, fmt.Errorf("opening temporal graph: %w", err)
	}
	pf, err := privacy.Load(cfg.BlacklistFile, cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("loading privacy filter: %w", err)
	}
	return &Engine{
		store:     s,
		index:     idx,
		graph:     g,
		predictor: predict.New(s, idx, g, cfg.PredictionWindow, cfg.MinConfidence),
		privacy:   pf,
	}, nil
}

// RecentActivities implements Facade.
func (e *Engine) RecentActivities(_ context.Context, hours, limit int) (*api.RecentActivitiesResult, error) {
	activities := e.store.Recent(hours, limit)
	return &api.RecentActivitiesResult{
		Status:     api.StatusSuccess,
		Count:      len(activities),
		Activities: activities,
	}, nil
}

// Search implements Facade.
func (e *Engine) Search(_ context.Context, query string, limit int) (*api.SearchResult, error) {
	results := e.index.Search(query, limit)
	return &api.SearchResult{
		Status:  api.StatusSuccess,
		Count:   len(results),
		Results: results,
	}, nil
}

// Predict implements Facade.
func (e *Engine) Predict(_ context.Context, description string, maxResults int) (*api.PredictResult, error) {
	predictions := e.predictor.Predict(description, maxResults)
	return &api.PredictResult{
		Status:      api.StatusSuccess,
		Count:       len(predictions),
		Predictions: predictions,
	}, nil
}

// Suggestions implements Facade.
func (e *Engine) Suggestions(_ context.Context, description string) (*api.SuggestionsResult, error) {
	return &api.SuggestionsResult{
		Status:      api.StatusSuccess,
		Suggestions: e.predictor.Suggestions(description),
	}, nil
}

// Related implements Facade.
func (e *Engine) Related(_ context.Context, activityID string, maxDepth int) (*api.RelatedResult, error) {
	related := e.graph.Related(activityID, maxDepth)
	return &api.RelatedResult{
		Status:  api.StatusSuccess,
		Count:   len(related),
		Related: related,
	}, nil
}

// Stats implements Facade.
func (e *Engine) Stats(_ context.Context) (*api.StatsResult, error) {
	return &api.StatsResult{
		Status: api.StatusSuccess,
		Stats: &api.EngineStats{
			Database:   e.store.Stats(),
			Embeddings: e.index.Stats(),
			Graph:      e.graph.Stats(),
			Privacy:    e.privacy.Stats(),
		},
	}, nil
}

// ListContexts implements Facade.
func (e *Engine) ListContexts(_ context.Context, limit int) (*api.ContextListResult, error) {
	contexts := e.store.ListContexts(limit)
	return &api.ContextListResult{
		Status:   api.StatusSuccess,
		Count:    len(contexts),
		Contexts: contexts,
	}, nil
}

// Cleanup implements Facade. Besides deleting old activity data it ages the
// temporal graph, so stale edges fade each maintenance round.
func (e *Engine) Cleanup(_ context.Context, days int) (*api.CleanupResult, error) {
	deleted, err := e.store.Cleanup(days)
	if err != nil {
		return nil, err
	}
	if err := e.graph.Decay(); err != nil {
		return nil, err
	}
	return &api.CleanupResult{
		Status:         api.StatusSuccess,
		DeletedRecords: deleted,
		RetentionDays:  days,
	}, nil
}

// PrivacyBlacklist implements Facade.
func (e *Engine) PrivacyBlacklist(_ context.Context, entryType, value, action string) (*api.BlacklistResult, error) {
	if err := e.privacy.Mutate(entryType, value, action); err != nil {
		return nil, err
	}
	return &api.BlacklistResult{
		Status:       api.StatusSuccess,
		Message:      fmt.Sprintf("%sed %s blacklist entry: %s", action, entryType, value),
		CurrentStats: e.privacy.Stats(),
	}, nil
}

// CreateContext implements Facade.
func (e *Engine) CreateContext(_ context.Context, name, description string, tags []string) (*api.CreateContextResult, error) {
	id, err := e.store.CreateOrUpdateContext(name, description, tags)
	if err != nil {
		return nil, err
	}
	return &api.CreateContextResult{
		Status:    api.StatusSuccess,
		ContextID: id,
		Name:      name,
	}, nil
}

// TrackActivity records one activity across the store, search index, and
// temporal graph, honoring the privacy filter. It is the ingest path used by
// the monitoring daemon; the MCP surface itself is read/query only.
func (e *Engine) TrackActivity(ctx context.Context, a *api.Activity) (bool, error) {
	allowed, err := e.privacy.Allowed(ctx, a.App, a.FilePath)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	if err := e.store.Append(a); err != nil {
		return false, err
	}
	text := a.WindowTitle
	if a.FilePath != "" {
		text += " " + a.FilePath
	}
	meta := map[string]string{"app": a.App}
	if err := e.index.Add(a.ID, text, meta); err != nil {
		return false, err
	}
	// Link to the previous activity so the temporal graph learns transitions.
	if recent := e.store.Recent(24, 2); len(recent) == 2 {
		if err := e.graph.Observe(recent[1].ID, a.ID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// PrivacyAllowed exposes the privacy check for the check-privacy command.
func (e *Engine) PrivacyAllowed(ctx context.Context, app, path string) (bool, error) {
	return e.privacy.Allowed(ctx, app, path)
}

// Close releases the engine's file handles.
func (e *Engine) Close() error {
	return e.store.Close()
}
