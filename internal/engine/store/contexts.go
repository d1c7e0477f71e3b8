package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tkingovr/context-continuity/api"
)

// CreateOrUpdateContext upserts a work context by name and returns its id.
// An existing context keeps its id and creation time; description and tags are
// replaced when provided, and last_active is always bumped.
func (s *Store) CreateOrUpdateContext(name, description string, tags []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var existing *api.WorkContext
	for _, c := range s.contexts {
		if c.Name == name {
			existing = c
			break
		}
	}

	if existing == nil {
		existing = &api.WorkContext{
			ID:        ulid.Make().String(),
			Name:      name,
			CreatedAt: now,
		}
		s.contexts[existing.ID] = existing
	}
	if description != "" {
		existing.Description = description
	}
	if tags != nil {
		existing.Tags = tags
	}
	existing.LastActive = now

	if err := s.saveContexts(); err != nil {
		return "", err
	}
	return existing.ID, nil
}

// ListContexts returns up to limit contexts ordered by last_active descending.
func (s *Store) ListContexts(limit int) []*api.WorkContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*api.WorkContext, 0, len(s.contexts))
	for _, c := range s.contexts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActive.After(out[j].LastActive)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) contextsPath() string {
	return filepath.Join(s.dir, "contexts.json")
}

func (s *Store) loadContexts() error {
	data, err := os.ReadFile(s.contextsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading contexts: %w", err)
	}
	if err := json.Unmarshal(data, &s.contexts); err != nil {
		return fmt.Errorf("parsing contexts: %w", err)
	}
	return nil
}

func (s *Store) saveContexts() error {
	data, err := json.MarshalIndent(s.contexts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling contexts: %w", err)
	}
	tmp := s.contextsPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing contexts: %w", err)
	}
	return os.Rename(tmp, s.contextsPath())
}
