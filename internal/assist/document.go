package assist

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nyayasetu/legal-assistant-rag/internal/index"
)

// DocumentExpert answers questions against user-uploaded documents only.
// Citations carry document name and page. When nothing usable comes back
// from the upload partition it delegates to the section expert path.
type DocumentExpert struct {
	embed    EmbeddingsClient
	gen      GenerationClient
	idx      index.Index
	sections *SectionExpert
	topK     int
	floor    float64
	log      *logrus.Entry
}

func NewDocumentExpert(embed EmbeddingsClient, gen GenerationClient, idx index.Index, sections *SectionExpert, topK int, floor float64, log *logrus.Logger) *DocumentExpert {
	if topK <= 0 {
		topK = 5
	}
	return &DocumentExpert{
		embed:    embed,
		gen:      gen,
		idx:      idx,
		sections: sections,
		topK:     topK,
		floor:    floor,
		log:      log.WithField("component", "document-expert"),
	}
}

func (e *DocumentExpert) Answer(ctx context.Context, q Query, language string, extracted Extracted, history []Turn) (Answer, error) {
	chunks := e.retrieve(ctx, q.Text)
	if len(chunks) == 0 {
		e.log.Debug("no usable upload chunks, delegating to section expert")
		return e.sections.Answer(ctx, q, language, extracted, history)
	}

	prompt := buildAnswerPrompt(q, language, extracted, chunks, history)
	text, err := e.gen.Generate(ctx, documentExpertSystem, prompt)
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		Response:   text,
		Confidence: groundedConfidence(chunks[0].Score),
		Source:     SourceDocumentExpert,
		Language:   language,
		Citations:  chunks,
	}, nil
}

func (e *DocumentExpert) retrieve(ctx context.Context, text string) []RetrievedChunk {
	vec, err := e.embed.Embed(ctx, text)
	if err != nil {
		e.log.WithError(err).Warn("embedding failed for document query")
		return nil
	}

	results, err := e.idx.Search(ctx, index.KindUpload, vec, e.topK)
	if err != nil {
		e.log.WithError(err).Warn("upload index search failed")
		return nil
	}
	if len(results) == 0 || results[0].Score < e.floor {
		return nil
	}

	chunks := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		if r.Score < e.floor {
			continue
		}
		chunks = append(chunks, toRetrievedChunk(r))
	}
	return chunks
}
