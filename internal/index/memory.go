package index

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// MemoryIndex is a brute-force in-memory store using cosine similarity.
// Good enough for tests and for running without Postgres; inserts are atomic
// under the write lock so concurrent readers never see a torn entry.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	nextID  int64
	entries []memoryEntry
}

type memoryEntry struct {
	chunk     Chunk
	embedding []float32
}

func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{dim: dim, nextID: 1}
}

func (m *MemoryIndex) Dimension() int { return m.dim }

func (m *MemoryIndex) Insert(ctx context.Context, c *Chunk, embedding []float32) (int64, error) {
	if err := checkDimension(m.dim, embedding); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *c
	stored.ID = m.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.nextID++

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.entries = append(m.entries, memoryEntry{chunk: stored, embedding: vec})

	return stored.ID, nil
}

func (m *MemoryIndex) Search(ctx context.Context, kind Kind, embedding []float32, limit int) ([]Result, error) {
	if err := checkDimension(m.dim, embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Result
	for _, e := range m.entries {
		if e.chunk.Kind != kind {
			continue
		}
		results = append(results, Result{
			Chunk: e.chunk,
			Score: cosineSimilarity(embedding, e.embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (m *MemoryIndex) Count(ctx context.Context, kind Kind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if e.chunk.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (m *MemoryIndex) Clear(ctx context.Context, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.chunk.Kind != kind {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ Index = (*MemoryIndex)(nil)
