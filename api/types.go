package api

import "time"

// StatusSuccess and StatusError are the status values carried by tool payloads.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Activity is a single tracked activity record.
type Activity struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	App         string    `json:"app"`
	WindowTitle string    `json:"window_title"`
	FilePath    string    `json:"file_path,omitempty"`
	ContextID   string    `json:"context_id,omitempty"`
}

// WorkContext is a named grouping of related activities.
type WorkContext struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}

// Match is one semantic search hit.
type Match struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Prediction is one predicted relevant activity.
type Prediction struct {
	ActivityID  string  `json:"activity_id"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"`
}

// Suggestion is an actionable context suggestion derived from predictions.
type Suggestion struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Detail string  `json:"detail,omitempty"`
	Score  float64 `json:"score"`
}

// RelatedActivity is one hit from a temporal graph traversal.
type RelatedActivity struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
	Depth  int     `json:"depth"`
}

// DatabaseStats summarizes the activity store.
type DatabaseStats struct {
	TotalActivities int            `json:"total_activities"`
	TotalContexts   int            `json:"total_contexts"`
	OldestActivity  *time.Time     `json:"oldest_activity,omitempty"`
	NewestActivity  *time.Time     `json:"newest_activity,omitempty"`
	ByApp           map[string]int `json:"by_app,omitempty"`
}

// EmbeddingStats summarizes the semantic search index.
type EmbeddingStats struct {
	IndexedDocuments int    `json:"indexed_documents"`
	Dimensions       int    `json:"dimensions"`
	CollectionName   string `json:"collection_name"`
}

// GraphStats summarizes the temporal relationship graph.
type GraphStats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	MaxNodes    int     `json:"max_nodes"`
	DecayFactor float64 `json:"decay_factor"`
}

// PrivacyStats summarizes the privacy filter configuration.
type PrivacyStats struct {
	BlacklistedApps        []string `json:"blacklisted_apps"`
	BlacklistedDirectories []string `json:"blacklisted_directories"`
	PolicyLoaded           bool     `json:"policy_loaded"`
}

// EngineStats aggregates stats from all engine components.
type EngineStats struct {
	Database   *DatabaseStats  `json:"database"`
	Embeddings *EmbeddingStats `json:"embeddings"`
	Graph      *GraphStats     `json:"graph"`
	Privacy    *PrivacyStats   `json:"privacy"`
}

// Per-tool result payloads. These marshal into the JSON objects placed inside
// the tools/call text content block.

type RecentActivitiesResult struct {
	Status     string      `json:"status"`
	Count      int         `json:"count"`
	Activities []*Activity `json:"activities"`
}

type SearchResult struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Results []Match `json:"results"`
}

type PredictResult struct {
	Status      string       `json:"status"`
	Count       int          `json:"count"`
	Predictions []Prediction `json:"predictions"`
}

type SuggestionsResult struct {
	Status      string       `json:"status"`
	Suggestions []Suggestion `json:"suggestions"`
}

type RelatedResult struct {
	Status  string            `json:"status"`
	Count   int               `json:"count"`
	Related []RelatedActivity `json:"related"`
}

type StatsResult struct {
	Status string       `json:"status"`
	Stats  *EngineStats `json:"stats"`
}

type ContextListResult struct {
	Status   string         `json:"status"`
	Count    int            `json:"count"`
	Contexts []*WorkContext `json:"contexts"`
}

type CleanupResult struct {
	Status         string `json:"status"`
	DeletedRecords int    `json:"deleted_records"`
	RetentionDays  int    `json:"retention_days"`
}

type BlacklistResult struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	CurrentStats *PrivacyStats `json:"current_stats"`
}

type CreateContextResult struct {
	Status    string `json:"status"`
	ContextID string `json:"context_id"`
	Name      string `json:"name"`
}
