// Package privacy decides which activities may be tracked and manages the
// app/directory blacklists behind the context_privacy_blacklist tool.
package privacy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tkingovr/context-continuity/api"
)

// Blacklist entry types and actions accepted by the tool surface.
const (
	TypeApp       = "app"
	TypeDirectory = "directory"
	ActionAdd     = "add"
	ActionRemove  = "remove"
)

// Filter holds the blacklists and an optional Rego policy.
type Filter struct {
	mu     sync.RWMutex
	path   string
	apps   map[string]bool
	dirs   map[string]bool
	policy *Policy
}

type blacklistFile struct {
	Apps        []string `json:"apps"`
	Directories []string `json:"directories"`
}

// Load creates or reopens a filter persisted at path. policyPath is optional;
// when set it must name a valid Rego policy file.
func Load(path, policyPath string) (*Filter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating privacy directory: %w", err)
	}
	f := &Filter{
		path: path,
		apps: make(map[string]bool),
		dirs: make(map[string]bool),
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	if policyPath != "" {
		p, err := LoadPolicy(policyPath)
		if err != nil {
			return nil, err
		}
		f.policy = p
	}
	return f, nil
}

// Mutate applies one blacklist change. Unknown types and actions are ordinary
// errors so the caller can report them as handler-level failures.
func (f *Filter) Mutate(entryType, value, action string) error {
	if entryType != TypeApp && entryType != TypeDirectory {
		return fmt.Errorf("unknown type: %s (use %q or %q)", entryType, TypeApp, TypeDirectory)
	}
	if action != ActionAdd && action != ActionRemove {
		return fmt.Errorf("unknown action: %s (use %q or %q)", action, ActionAdd, ActionRemove)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.apps
	if entryType == TypeDirectory {
		set = f.dirs
	}
	if action == ActionAdd {
		set[value] = true
	} else {
		delete(set, value)
	}
	return f.saveLocked()
}

// Allowed reports whether an activity in the given app touching the given
// path may be tracked. The static blacklists are consulted first, then the
// Rego policy if one is loaded.
func (f *Filter) Allowed(ctx context.Context, app, path string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.apps[app] {
		return false, nil
	}
	for dir := range f.dirs {
		if path != "" && strings.HasPrefix(path, dir) {
			return false, nil
		}
	}
	if f.policy != nil {
		return f.policy.Allow(ctx, app, path)
	}
	return true, nil
}

// Stats summarizes the filter configuration.
func (f *Filter) Stats() *api.PrivacyStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return &api.PrivacyStats{
		BlacklistedApps:        sortedKeys(f.apps),
		BlacklistedDirectories: sortedKeys(f.dirs),
		PolicyLoaded:           f.policy != nil,
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *Filter) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading blacklist: %w", err)
	}
	var bf blacklistFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("parsing blacklist: %w", err)
	}
	for _, a := range bf.Apps {
		f.apps[a] = true
	}
	for _, d := range bf.Directories {
		f.dirs[d] = true
	}
	return nil
}

func (f *Filter) saveLocked() error {
	bf := blacklistFile{
		Apps:        sortedKeys(f.apps),
		Directories: sortedKeys(f.dirs),
	}
	data, err := json.MarshalIndent(&bf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling blacklist: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing blacklist: %w", err)
	}
	return os.Rename(tmp, f.path)
}
