package assist

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

// Classifier assigns a query to a category with a confidence score and
// extracted entities. Classification degradation never blocks answering: any
// provider or parse failure falls back to GENERAL with confidence 0.
type Classifier struct {
	gen GenerationClient
	log *logrus.Entry
}

func NewClassifier(gen GenerationClient, log *logrus.Logger) *Classifier {
	return &Classifier{
		gen: gen,
		log: log.WithField("component", "classifier"),
	}
}

// classificationPayload is the untrusted structure the model is asked to emit.
type classificationPayload struct {
	Category       string   `json:"category"`
	Confidence     float64  `json:"confidence"`
	SectionNumbers []string `json:"section_numbers"`
	LawNames       []string `json:"law_names"`
	Rationale      string   `json:"rationale"`
}

// Classify never returns an error; see the fallback contract above.
func (c *Classifier) Classify(ctx context.Context, q Query, history []Turn) ClassificationResult {
	raw, err := c.gen.GenerateJSON(ctx, classifierSystem, buildClassifierPrompt(q, history))
	if err != nil {
		c.log.WithError(err).Warn("classification degraded, falling back to GENERAL")
		return degradedClassification()
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		c.log.WithError(err).WithField("raw", oneLine(raw)).Warn("unparsable classification, falling back to GENERAL")
		return degradedClassification()
	}

	category, ok := ParseCategory(strings.ToUpper(strings.TrimSpace(payload.Category)))
	if !ok {
		c.log.WithField("category", payload.Category).Warn("unknown category from model, falling back to GENERAL")
		return degradedClassification()
	}

	result := ClassificationResult{
		Category:   category,
		Confidence: clamp01(payload.Confidence),
		Extracted: Extracted{
			SectionNumbers: payload.SectionNumbers,
			LawNames:       payload.LawNames,
		},
		Rationale: payload.Rationale,
	}

	// Regex extraction backstops prompt-directed extraction.
	result.Extracted = result.Extracted.Merge(ExtractEntities(q.Text))

	c.log.WithFields(logrus.Fields{
		"category":   result.Category,
		"confidence": result.Confidence,
		"sections":   result.Extracted.SectionNumbers,
	}).Debug("query classified")

	return result
}

func degradedClassification() ClassificationResult {
	return ClassificationResult{
		Category:   CategoryGeneral,
		Confidence: 0,
	}
}

// stripFences removes markdown code fences models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "```json") {
		s = strings.SplitN(s, "```json", 2)[1]
		s = strings.SplitN(s, "```", 2)[0]
	} else if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
	}
	return strings.TrimSpace(s)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
