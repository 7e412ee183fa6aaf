package index

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgIndex stores chunks and embeddings in Postgres with pgvector.
// Similarity uses cosine distance, reported as 1-distance so scores land in
// [0,1]. See schema.sql for the expected tables.
type PgIndex struct {
	db  *pgxpool.Pool
	dim int
}

func NewPgIndex(db *pgxpool.Pool, dim int) *PgIndex {
	return &PgIndex{db: db, dim: dim}
}

func (r *PgIndex) Dimension() int { return r.dim }

func (r *PgIndex) Insert(ctx context.Context, c *Chunk, embedding []float32) (int64, error) {
	if err := checkDimension(r.dim, embedding); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO legal_chunk (kind, title, content, source, page, pos, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		c.Kind,
		c.Title,
		c.Text,
		c.Source,
		c.Page,
		c.Position,
		c.Tags,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	vec := pgvector.NewVector(embedding)
	_, err = r.db.Exec(ctx, `
		INSERT INTO legal_chunk_embedding (chunk_id, embedding)
		VALUES ($1, $2)
	`, id, vec)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *PgIndex) Search(ctx context.Context, kind Kind, embedding []float32, limit int) ([]Result, error) {
	if err := checkDimension(r.dim, embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx, `
		SELECT
			c.id, c.kind, c.title, c.content, c.source, c.page, c.pos,
			c.tags, c.created_at,
			1 - (e.embedding <=> $2) AS score
		FROM legal_chunk c
		JOIN legal_chunk_embedding e ON c.id = e.chunk_id
		WHERE c.kind = $1
		ORDER BY e.embedding <=> $2
		LIMIT $3
	`, kind, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(
			&res.Chunk.ID,
			&res.Chunk.Kind,
			&res.Chunk.Title,
			&res.Chunk.Text,
			&res.Chunk.Source,
			&res.Chunk.Page,
			&res.Chunk.Position,
			&res.Chunk.Tags,
			&res.Chunk.CreatedAt,
			&res.Score,
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (r *PgIndex) Count(ctx context.Context, kind Kind) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM legal_chunk WHERE kind = $1`, kind).Scan(&n)
	return n, err
}

func (r *PgIndex) Clear(ctx context.Context, kind Kind) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM legal_chunk_embedding e
		USING legal_chunk c
		WHERE e.chunk_id = c.id AND c.kind = $1
	`, kind)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM legal_chunk WHERE kind = $1`, kind)
	return err
}

var _ Index = (*PgIndex)(nil)
