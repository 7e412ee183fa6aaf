package assist

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nyayasetu/legal-assistant-rag/internal/index"
)

// Router classifies a query, selects a handler by a deterministic
// category mapping, and guarantees that a well-formed Answer reaches the
// caller: handler failures become an error-fallback Answer, never an error.
// The only rejected input is an empty query text.
type Router struct {
	classifier *Classifier
	sections   *SectionExpert
	documents  *DocumentExpert
	general    *GeneralHandler
	idx        index.Index
	history    HistoryStore
	threshold  float64
	log        *logrus.Entry
}

func NewRouter(
	classifier *Classifier,
	sections *SectionExpert,
	documents *DocumentExpert,
	general *GeneralHandler,
	idx index.Index,
	history HistoryStore,
	threshold float64,
	log *logrus.Logger,
) *Router {
	return &Router{
		classifier: classifier,
		sections:   sections,
		documents:  documents,
		general:    general,
		idx:        idx,
		history:    history,
		threshold:  threshold,
		log:        log.WithField("component", "router"),
	}
}

// Route answers a query. The returned error is non-nil only for ErrEmptyQuery.
func (r *Router) Route(ctx context.Context, q Query) (Answer, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Answer{}, ErrEmptyQuery
	}

	language := q.Language
	if language == "" || language == LanguageAuto {
		language = DetectLanguage(q.Text)
	}

	history, err := r.history.Recent(ctx, q.ConversationID)
	if err != nil {
		// Stale or missing history degrades continuity, not correctness.
		r.log.WithError(err).Warn("history read failed, continuing without context")
		history = nil
	}

	start := time.Now()
	cls := r.classifier.Classify(ctx, q, history)

	handler, handlerName := r.selectHandler(ctx, cls)

	ans, err := handler(ctx, q, language, cls.Extracted, history)
	if err != nil {
		r.log.WithError(err).WithField("handler", handlerName).Error("handler failed")
		ans = Answer{
			Response:   UserMessage(err),
			Confidence: 0,
			Source:     SourceErrorFallback,
			Language:   language,
		}
	}

	r.log.WithFields(logrus.Fields{
		"conversation": q.ConversationID,
		"category":     cls.Category,
		"confidence":   ans.Confidence,
		"handler":      handlerName,
		"source":       ans.Source,
		"duration":     time.Since(start),
	}).Info("query answered")

	r.appendTurns(ctx, q, ans)

	return ans, nil
}

type handlerFunc func(ctx context.Context, q Query, language string, extracted Extracted, history []Turn) (Answer, error)

// selectHandler maps a classification to a handler. Low confidence always
// falls back to the general handler: a degraded answer beats a wrong
// specialist.
func (r *Router) selectHandler(ctx context.Context, cls ClassificationResult) (handlerFunc, string) {
	general := func(ctx context.Context, q Query, language string, _ Extracted, history []Turn) (Answer, error) {
		return r.general.Answer(ctx, q, language, history)
	}

	if cls.Confidence < r.threshold {
		return general, "general"
	}

	switch cls.Category {
	case CategorySectionQuery, CategoryLawQuery:
		return r.sections.Answer, "section-expert"
	case CategoryDocumentQuery:
		if r.hasUploadedDocuments(ctx) {
			return r.documents.Answer, "document-expert"
		}
		return r.sections.Answer, "section-expert"
	default:
		return general, "general"
	}
}

func (r *Router) hasUploadedDocuments(ctx context.Context) bool {
	n, err := r.idx.Count(ctx, index.KindUpload)
	if err != nil {
		r.log.WithError(err).Warn("upload count failed, routing away from document expert")
		return false
	}
	return n > 0
}

// appendTurns records the exchange as two turns, user then assistant. The
// store serializes appends per conversation and enforces the FIFO bound.
func (r *Router) appendTurns(ctx context.Context, q Query, ans Answer) {
	now := time.Now()
	err := r.history.Append(ctx, q.ConversationID,
		Turn{Role: RoleUser, Text: q.Text, At: now},
		Turn{Role: RoleAssistant, Text: ans.Response, At: now},
	)
	if err != nil {
		r.log.WithError(err).Warn("history append failed")
	}
}
