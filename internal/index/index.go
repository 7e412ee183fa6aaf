// Package index stores embedded text chunks and answers nearest-neighbor
// queries. Two implementations exist: Postgres with pgvector for real
// deployments and an in-memory store for tests and single-process setups.
package index

import (
	"context"
	"fmt"
	"time"
)

// Kind partitions the index so document-query retrieval can be restricted to
// user uploads while section retrieval stays on the seeded law corpus.
type Kind string

const (
	KindCorpus Kind = "corpus"
	KindUpload Kind = "upload"
)

// Chunk is the unit of indexing and retrieval.
type Chunk struct {
	ID        int64
	Kind      Kind
	Title     string
	Text      string
	Source    string
	Page      int
	Position  int
	Tags      []string
	CreatedAt time.Time
}

// Result is a similarity hit, scored in [0,1], higher is more similar.
type Result struct {
	Chunk Chunk
	Score float64
}

// Index is the retrieval contract. Insert must be atomic with respect to
// concurrent Search calls; Search may observe slightly stale data during
// writes. All vectors must match the configured dimension.
type Index interface {
	Insert(ctx context.Context, c *Chunk, embedding []float32) (int64, error)
	Search(ctx context.Context, kind Kind, embedding []float32, limit int) ([]Result, error)
	Count(ctx context.Context, kind Kind) (int, error)
	Clear(ctx context.Context, kind Kind) error
	Dimension() int
}

func checkDimension(want int, embedding []float32) error {
	if len(embedding) != want {
		return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(embedding), want)
	}
	return nil
}
