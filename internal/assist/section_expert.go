package assist

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/nyayasetu/legal-assistant-rag/internal/index"
)

// SectionExpert answers section and law queries with retrieval-backed
// generation. When retrieval is unavailable or nothing clears the relevance
// floor it answers ungrounded from the model's own knowledge, with a
// penalized confidence and the gemini-fallback source marker.
type SectionExpert struct {
	embed EmbeddingsClient
	gen   GenerationClient
	idx   index.Index
	kind  index.Kind
	topK  int
	floor float64
	log   *logrus.Entry
}

func NewSectionExpert(embed EmbeddingsClient, gen GenerationClient, idx index.Index, topK int, floor float64, log *logrus.Logger) *SectionExpert {
	if topK <= 0 {
		topK = 5
	}
	return &SectionExpert{
		embed: embed,
		gen:   gen,
		idx:   idx,
		kind:  index.KindCorpus,
		topK:  topK,
		floor: floor,
		log:   log.WithField("component", "section-expert"),
	}
}

func (e *SectionExpert) Answer(ctx context.Context, q Query, language string, extracted Extracted, history []Turn) (Answer, error) {
	chunks := e.retrieve(ctx, q.Text)
	grounded := len(chunks) > 0

	prompt := buildAnswerPrompt(q, language, extracted, chunks, history)
	text, err := e.gen.Generate(ctx, sectionExpertSystem, prompt)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{
		Response: text,
		Language: language,
	}
	if grounded {
		ans.Source = SourceSectionExpert
		ans.Citations = chunks
		ans.Confidence = groundedConfidence(chunks[0].Score)
	} else {
		ans.Source = SourceGeminiFallback
		ans.Confidence = ungroundedConfidence
	}
	return ans, nil
}

// retrieve embeds the query and searches the corpus. Any failure here is
// RetrievalUnavailable territory: logged, then treated as an empty result so
// the handler proceeds ungrounded.
func (e *SectionExpert) retrieve(ctx context.Context, text string) []RetrievedChunk {
	vec, err := e.embed.Embed(ctx, text)
	if err != nil {
		e.log.WithError(err).Warn("embedding failed, answering ungrounded")
		return nil
	}

	results, err := e.idx.Search(ctx, e.kind, vec, e.topK)
	if err != nil {
		e.log.WithError(err).Warn("index search failed, answering ungrounded")
		return nil
	}

	// Below-floor matches are noise; forcing them into the prompt degrades
	// answers more than no context does.
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

const ungroundedConfidence = 0.45

// groundedConfidence scales the 0.7 baseline by the best similarity score.
func groundedConfidence(bestScore float64) float64 {
	conf := 0.7 + 0.25*clamp01(bestScore)
	return clamp01(conf)
}

func toRetrievedChunk(r index.Result) RetrievedChunk {
	md := map[string]string{}
	if r.Chunk.Title != "" {
		md["title"] = r.Chunk.Title
	}
	if r.Chunk.Source != "" {
		md["document"] = r.Chunk.Source
	}
	if r.Chunk.Page > 0 {
		md["page"] = strconv.Itoa(r.Chunk.Page)
	}
	if r.Chunk.Position > 0 {
		md["chunk"] = strconv.Itoa(r.Chunk.Position)
	}

	sourceID := r.Chunk.Source
	if sourceID == "" {
		sourceID = r.Chunk.Title
	}

	return RetrievedChunk{
		Text:     r.Chunk.Text,
		SourceID: sourceID,
		Score:    clamp01(r.Score),
		Metadata: md,
	}
}
