// Package predict derives context predictions and actionable suggestions by
// blending semantic similarity, temporal graph adjacency, and recency.
package predict

import (
	"fmt"
	"sort"
	"time"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/engine/embed"
	"github.com/tkingovr/context-continuity/internal/engine/graph"
	"github.com/tkingovr/context-continuity/internal/engine/store"
)

// recencyBoost is added to the confidence of activities seen inside the
// prediction window.
const recencyBoost = 0.1

// graphAttenuation scales graph-derived confidence relative to the seed match.
const graphAttenuation = 0.5

// Predictor scores candidate activities against an activity description.
type Predictor struct {
	store         *store.Store
	index         *embed.Index
	graph         *graph.Graph
	window        time.Duration
	minConfidence float64
}

// New creates a predictor over the given components.
func New(s *store.Store, idx *embed.Index, g *graph.Graph, window time.Duration, minConfidence float64) *Predictor {
	return &Predictor{
		store:         s,
		index:         idx,
		graph:         g,
		window:        window,
		minConfidence: minConfidence,
	}
}

// Predict returns up to maxResults predictions for the described activity,
// strongest first, filtered by the minimum confidence threshold.
func (p *Predictor) Predict(description string, maxResults int) []api.Prediction {
	if maxResults < 1 {
		maxResults = 1
	}

	seen := make(map[string]bool)
	preds := make([]api.Prediction, 0, maxResults*2)

	matches := p.index.Search(description, maxResults*2)
	for _, m := range matches {
		conf := m.Score
		if p.isRecent(m.ID) {
			conf += recencyBoost
		}
		if conf > 1 {
			conf = 1
		}
		seen[m.ID] = true
		preds = append(preds, api.Prediction{
			ActivityID:  m.ID,
			Description: m.Text,
			Confidence:  conf,
			Source:      "embedding",
		})
	}

	// Pull in temporal neighbors of the strongest matches.
	for _, m := range matches {
		for _, rel := range p.graph.Related(m.ID, 1) {
			if seen[rel.ID] {
				continue
			}
			conf := m.Score * graphAttenuation
			if rel.Weight < 1 {
				conf *= rel.Weight
			}
			seen[rel.ID] = true
			preds = append(preds, api.Prediction{
				ActivityID:  rel.ID,
				Description: p.describe(rel.ID),
				Confidence:  conf,
				Source:      "graph",
			})
		}
	}

	filtered := preds[:0]
	for _, pr := range preds {
		if pr.Confidence >= p.minConfidence {
			filtered = append(filtered, pr)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Confidence != filtered[j].Confidence {
			return filtered[i].Confidence > filtered[j].Confidence
		}
		return filtered[i].ActivityID < filtered[j].ActivityID
	})
	if len(filtered) > maxResults {
		filtered = filtered[:maxResults]
	}
	return filtered
}

// Suggestions turns the top predictions into actionable suggestions: files to
// reopen, contexts to resume, and activities worth reviewing.
func (p *Predictor) Suggestions(description string) []api.Suggestion {
	suggestions := []api.Suggestion{}
	seenFiles := make(map[string]bool)
	seenContexts := make(map[string]bool)

	for _, pred := range p.Predict(description, 5) {
		a, ok := p.store.Lookup(pred.ActivityID)
		if !ok {
			suggestions = append(suggestions, api.Suggestion{
				Type:   "review_related",
				Title:  pred.Description,
				Detail: fmt.Sprintf("related activity %s", pred.ActivityID),
				Score:  pred.Confidence,
			})
			continue
		}
		if a.FilePath != "" && !seenFiles[a.FilePath] {
			seenFiles[a.FilePath] = true
			suggestions = append(suggestions, api.Suggestion{
				Type:   "open_file",
				Title:  a.FilePath,
				Detail: fmt.Sprintf("last touched in %s", a.App),
				Score:  pred.Confidence,
			})
		}
		if a.ContextID != "" && !seenContexts[a.ContextID] {
			seenContexts[a.ContextID] = true
			suggestions = append(suggestions, api.Suggestion{
				Type:   "resume_context",
				Title:  a.ContextID,
				Detail: a.WindowTitle,
				Score:  pred.Confidence,
			})
		}
		if a.FilePath == "" && a.ContextID == "" {
			suggestions = append(suggestions, api.Suggestion{
				Type:   "review_related",
				Title:  a.WindowTitle,
				Detail: a.App,
				Score:  pred.Confidence,
			})
		}
	}
	return suggestions
}

func (p *Predictor) isRecent(id string) bool {
	a, ok := p.store.Lookup(id)
	if !ok {
		return false
	}
	return time.Since(a.Timestamp) <= p.window
}

func (p *Predictor) describe(id string) string {
	if a, ok := p.store.Lookup(id); ok && a.WindowTitle != "" {
		return a.WindowTitle
	}
	return id
}
