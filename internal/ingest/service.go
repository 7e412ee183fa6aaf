package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
	"github.com/nyayasetu/legal-assistant-rag/internal/index"
)

// Service chunks, embeds and stores source text. The same path serves the
// corpus CLI and the HTTP document upload.
type Service struct {
	embed     assist.EmbeddingsClient
	idx       index.Index
	chunkSize int
	log       *logrus.Entry
}

func NewService(embed assist.EmbeddingsClient, idx index.Index, chunkSize int, log *logrus.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Service{
		embed:     embed,
		idx:       idx,
		chunkSize: chunkSize,
		log:       log.WithField("component", "ingest"),
	}
}

// Result summarizes one ingestion run.
type Result struct {
	Pages  int
	Chunks int
}

// IngestText chunks and stores one text blob under the given kind.
func (s *Service) IngestText(ctx context.Context, kind index.Kind, title, source, content string) (int, error) {
	chunks := SplitChunks(content, s.chunkSize)
	stored := 0

	for i, c := range chunks {
		chunkTitle := title
		if len(chunks) > 1 {
			chunkTitle = fmt.Sprintf("%s (part %d)", title, i+1)
		}

		if err := s.storeChunk(ctx, &index.Chunk{
			Kind:     kind,
			Title:    chunkTitle,
			Text:     c,
			Source:   source,
			Position: i + 1,
			Tags:     DetectTags(c),
		}); err != nil {
			return stored, err
		}
		stored++
	}

	return stored, nil
}

// IngestPDF stores an uploaded PDF as upload-kind chunks with page metadata.
func (s *Service) IngestPDF(ctx context.Context, name string, r io.ReaderAt, size int64) (Result, error) {
	pages, err := ExtractPDFPages(r, size)
	if err != nil {
		return Result{}, fmt.Errorf("read pdf %s: %w", name, err)
	}

	res := Result{Pages: len(pages)}
	for _, page := range pages {
		for i, c := range SplitChunks(page.Text, s.chunkSize) {
			err := s.storeChunk(ctx, &index.Chunk{
				Kind:     index.KindUpload,
				Title:    fmt.Sprintf("%s p.%d", name, page.Number),
				Text:     c,
				Source:   name,
				Page:     page.Number,
				Position: i + 1,
				Tags:     DetectTags(c),
			})
			if err != nil {
				return res, err
			}
			res.Chunks++
		}
	}

	s.log.WithFields(logrus.Fields{
		"document": name,
		"pages":    res.Pages,
		"chunks":   res.Chunks,
	}).Info("pdf ingested")

	return res, nil
}

func (s *Service) storeChunk(ctx context.Context, c *index.Chunk) error {
	c.Text = SanitizeUTF8(strings.TrimSpace(c.Text))
	if c.Text == "" {
		return nil
	}

	vec, err := s.embed.Embed(ctx, c.Text)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}

	id, err := s.idx.Insert(ctx, c, vec)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"id":    id,
		"kind":  c.Kind,
		"title": c.Title,
		"len":   len(c.Text),
	}).Debug("chunk stored")

	return nil
}
