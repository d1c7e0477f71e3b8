// Package embed provides semantic search over activity text using
// deterministic feature-hashed bag-of-words vectors and cosine similarity.
package embed

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tkingovr/context-continuity/api"
)

// Index is an in-memory vector index with JSON persistence.
type Index struct {
	mu         sync.RWMutex
	path       string
	collection string
	dims       int
	docs       map[string]*document
}

type document struct {
	Text     string            `json:"text"`
	Vector   []float64         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type indexFile struct {
	Collection string               `json:"collection"`
	Dimensions int                  `json:"dimensions"`
	Documents  map[string]*document `json:"documents"`
}

// Open creates or reopens an index persisted under dir.
func Open(dir, collection string, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid vector dimensions: %d", dims)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating embedding directory: %w", err)
	}
	idx := &Index{
		path:       filepath.Join(dir, "index.json"),
		collection: collection,
		dims:       dims,
		docs:       make(map[string]*document),
	}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add indexes one document, replacing any previous entry with the same id.
func (idx *Index) Add(id, text string, metadata map[string]string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs[id] = &document{
		Text:     text,
		Vector:   idx.vectorize(text),
		Metadata: metadata,
	}
	return idx.save()
}

// Search returns up to n documents ranked by cosine similarity to the query.
// Documents with no overlap with the query are omitted.
func (idx *Index) Search(query string, n int) []api.Match {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	qv := idx.vectorize(query)
	matches := make([]api.Match, 0, len(idx.docs))
	for id, doc := range idx.docs {
		score := dot(qv, doc.Vector)
		if score <= 0 {
			continue
		}
		matches = append(matches, api.Match{
			ID:       id,
			Text:     doc.Text,
			Score:    score,
			Metadata: doc.Metadata,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// Stats summarizes the index.
func (idx *Index) Stats() *api.EmbeddingStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return &api.EmbeddingStats{
		IndexedDocuments: len(idx.docs),
		Dimensions:       idx.dims,
		CollectionName:   idx.collection,
	}
}

// vectorize maps text to an L2-normalized term-frequency vector using the
// hashing trick, so the vocabulary never needs to be stored.
func (idx *Index) vectorize(text string) []float64 {
	v := make([]float64, idx.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[int(h.Sum32())%idx.dims]++
	}
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func (idx *Index) load() error {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading embedding index: %w", err)
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing embedding index: %w", err)
	}
	if f.Dimensions != idx.dims {
		// Dimension change invalidates stored vectors; start fresh.
		return nil
	}
	if f.Documents != nil {
		idx.docs = f.Documents
	}
	return nil
}

func (idx *Index) save() error {
	f := indexFile{
		Collection: idx.collection,
		Dimensions: idx.dims,
		Documents:  idx.docs,
	}
	data, err := json.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling embedding index: %w", err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing embedding index: %w", err)
	}
	return os.Rename(tmp, idx.path)
}
