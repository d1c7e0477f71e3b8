// Package graph maintains the temporal relationship graph between activities.
// Edges are strengthened when activities co-occur and weakened by periodic
// decay; traversal finds related activities within a bounded depth.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tkingovr/context-continuity/api"
)

// minWeight is the edge weight below which decayed edges are pruned.
const minWeight = 0.05

// Graph is a weighted undirected graph keyed by activity id.
type Graph struct {
	mu       sync.Mutex
	path     string
	maxNodes int
	decay    float64
	nodes    map[string]map[string]float64
}

// Open creates or reopens a graph persisted at path.
func Open(path string, maxNodes int, decay float64) (*Graph, error) {
	if decay <= 0 || decay >= 1 {
		return nil, fmt.Errorf("invalid decay factor: %v", decay)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating graph directory: %w", err)
	}
	g := &Graph{
		path:     path,
		maxNodes: maxNodes,
		decay:    decay,
		nodes:    make(map[string]map[string]float64),
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

// Observe strengthens the edge between two co-occurring activities.
func (g *Graph) Observe(a, b string) error {
	if a == b || a == "" || b == "" {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edge(a)[b] += 1.0
	g.edge(b)[a] += 1.0
	g.evictLocked()
	return g.saveLocked()
}

// Decay multiplies all edge weights by the decay factor and prunes edges that
// drop below the minimum weight.
func (g *Graph) Decay() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, edges := range g.nodes {
		for peer, w := range edges {
			w *= g.decay
			if w < minWeight {
				delete(edges, peer)
			} else {
				edges[peer] = w
			}
		}
		if len(edges) == 0 {
			delete(g.nodes, id)
		}
	}
	return g.saveLocked()
}

// Related walks the graph from id up to maxDepth hops, returning reachable
// activities with path-attenuated weights, strongest first. Hitting the same
// node via several paths keeps the best weight.
func (g *Graph) Related(id string, maxDepth int) []api.RelatedActivity {
	g.mu.Lock()
	defer g.mu.Unlock()

	if maxDepth < 1 {
		maxDepth = 1
	}

	best := make(map[string]api.RelatedActivity)
	frontier := map[string]float64{id: 1.0}

	for depth := 1; depth <= maxDepth; depth++ {
		next := make(map[string]float64)
		for node, pathWeight := range frontier {
			for peer, w := range g.nodes[node] {
				if peer == id {
					continue
				}
				weight := pathWeight * w
				cur, seen := best[peer]
				if !seen || weight > cur.Weight {
					best[peer] = api.RelatedActivity{ID: peer, Weight: weight, Depth: depth}
				}
				if weight > next[peer] {
					next[peer] = weight
				}
			}
		}
		frontier = next
	}

	out := make([]api.RelatedActivity, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Stats summarizes the graph.
func (g *Graph) Stats() *api.GraphStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	edges := 0
	for _, peers := range g.nodes {
		edges += len(peers)
	}
	return &api.GraphStats{
		Nodes:       len(g.nodes),
		Edges:       edges / 2, // undirected, stored in both directions
		MaxNodes:    g.maxNodes,
		DecayFactor: g.decay,
	}
}

func (g *Graph) edge(id string) map[string]float64 {
	if g.nodes[id] == nil {
		g.nodes[id] = make(map[string]float64)
	}
	return g.nodes[id]
}

// evictLocked drops the weakest nodes once the graph exceeds maxNodes.
func (g *Graph) evictLocked() {
	for g.maxNodes > 0 && len(g.nodes) > g.maxNodes {
		weakest := ""
		weakestTotal := 0.0
		for id, edges := range g.nodes {
			total := 0.0
			for _, w := range edges {
				total += w
			}
			if weakest == "" || total < weakestTotal {
				weakest = id
				weakestTotal = total
			}
		}
		for _, peers := range g.nodes {
			delete(peers, weakest)
		}
		delete(g.nodes, weakest)
	}
}

func (g *Graph) load() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading graph: %w", err)
	}
	if err := json.Unmarshal(data, &g.nodes); err != nil {
		return fmt.Errorf("parsing graph: %w", err)
	}
	return nil
}

func (g *Graph) saveLocked() error {
	data, err := json.Marshal(g.nodes)
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	return os.Rename(tmp, g.path)
}
