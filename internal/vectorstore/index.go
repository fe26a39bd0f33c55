// Package vectorstore provides a persisted brute-force vector index over
// document chunks with per-chunk metadata filtering.
package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const indexFileName = "index.json"

// Chunk is one embedded passage with the metadata needed for filtered
// retrieval and source attribution.
type Chunk struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Source  string    `json:"source"`
	DocType string    `json:"doc_type"`
	Vector  []float32 `json:"vector"`
}

// Hit is a single search result.
type Hit struct {
	Chunk *Chunk
	Score float64
}

// Index is an in-memory vector index using inner product search over
// normalized vectors. Small corpora only; search is O(n).
type Index struct {
	mu         sync.RWMutex
	dimensions int
	chunks     []*Chunk
}

// New creates an empty index with the given vector dimension.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Index{dimensions: dimensions}, nil
}

// Add appends chunks to the index. Every chunk vector must match the index
// dimension.
func (ix *Index) Add(chunks []*Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, c := range chunks {
		if len(c.Vector) != ix.dimensions {
			return fmt.Errorf("vector dimension mismatch for chunk %s: got %d, expected %d",
				c.ID, len(c.Vector), ix.dimensions)
		}
		ix.chunks = append(ix.chunks, c)
	}
	return nil
}

// Search returns the top-k chunks by inner product, restricted to the given
// doc type. An empty docType matches all chunks. No relevance threshold is
// applied; fewer than k results are returned only when fewer chunks match.
func (ix *Index) Search(query []float32, docType string, k int) ([]*Hit, error) {
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), ix.dimensions)
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0)
	for _, c := range ix.chunks {
		if docType != "" && c.DocType != docType {
			continue
		}
		var dot float64
		for i := 0; i < ix.dimensions; i++ {
			dot += float64(query[i] * c.Vector[i])
		}
		hits = append(hits, &Hit{Chunk: c, Score: dot})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of chunks in the index.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

type indexFile struct {
	Dimensions int      `json:"dimensions"`
	Chunks     []*Chunk `json:"chunks"`
}

// Save persists the index into dir, replacing any previous contents.
func (ix *Index) Save(dir string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.Marshal(indexFile{Dimensions: ix.dimensions, Chunks: ix.chunks})
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	path := filepath.Join(dir, indexFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}

// Load reads a persisted index from dir. A missing or unreadable index is an
// error; retrieval has no fallback when the store is unreachable.
func Load(dir string) (*Index, error) {
	path := filepath.Join(dir, indexFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", path, err)
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode vector index %s: %w", path, err)
	}
	if f.Dimensions <= 0 {
		return nil, fmt.Errorf("vector index %s: invalid dimension %d", path, f.Dimensions)
	}
	ix := &Index{dimensions: f.Dimensions, chunks: f.Chunks}
	for _, c := range ix.chunks {
		if len(c.Vector) != ix.dimensions {
			return nil, fmt.Errorf("vector index %s: chunk %s has dimension %d, expected %d",
				path, c.ID, len(c.Vector), ix.dimensions)
		}
	}
	return ix, nil
}
