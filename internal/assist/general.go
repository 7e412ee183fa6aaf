package assist

import (
	"context"

	"github.com/sirupsen/logrus"
)

// GeneralHandler answers without retrieval. No grounding is attempted, so
// every answer carries the mid-range default confidence.
type GeneralHandler struct {
	gen GenerationClient
	log *logrus.Entry
}

func NewGeneralHandler(gen GenerationClient, log *logrus.Logger) *GeneralHandler {
	return &GeneralHandler{
		gen: gen,
		log: log.WithField("component", "general-handler"),
	}
}

const generalConfidence = 0.6

func (h *GeneralHandler) Answer(ctx context.Context, q Query, language string, history []Turn) (Answer, error) {
	text, err := h.gen.Generate(ctx, generalSystem, buildGeneralPrompt(q, language, history))
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		Response:   text,
		Confidence: generalConfidence,
		Source:     SourceGeneral,
		Language:   language,
	}, nil
}
