package assist

import "time"

// Category is the closed taxonomy the classifier and router agree on.
// Provider output is validated against it before use.
type Category string

const (
	CategoryLawQuery      Category = "LAW_QUERY"
	CategorySectionQuery  Category = "SECTION_QUERY"
	CategoryLegalAdvice   Category = "LEGAL_ADVICE"
	CategoryDocumentQuery Category = "DOCUMENT_QUERY"
	CategoryGeneral       Category = "GENERAL"
	CategoryOutOfScope    Category = "OUT_OF_SCOPE"
)

// ParseCategory validates a raw category string coming back from the model.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryLawQuery, CategorySectionQuery, CategoryLegalAdvice,
		CategoryDocumentQuery, CategoryGeneral, CategoryOutOfScope:
		return Category(s), true
	}
	return "", false
}

// Query is one incoming legal question. Immutable once received.
type Query struct {
	Text           string `json:"text"`
	Language       string `json:"language"`
	ConversationID string `json:"conversationId"`
}

// Extracted holds entities pulled out of the query text, either by the
// model's structured output or by regex.
type Extracted struct {
	SectionNumbers []string `json:"sectionNumbers"`
	LawNames       []string `json:"lawNames"`
}

// ClassificationResult is produced once per query and never mutated.
type ClassificationResult struct {
	Category   Category  `json:"category"`
	Confidence float64   `json:"confidence"`
	Extracted  Extracted `json:"extracted"`
	Rationale  string    `json:"rationale,omitempty"`
}

// RetrievedChunk is one similarity hit from the vector index, scored in [0,1].
type RetrievedChunk struct {
	Text     string            `json:"text"`
	SourceID string            `json:"sourceId"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Answer is the terminal artifact returned to the caller. Degraded answers
// are distinguishable only via Confidence and Source, never by shape.
type Answer struct {
	Response   string           `json:"response"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
	Language   string           `json:"language"`
	Citations  []RetrievedChunk `json:"citations"`
}

// Answer sources. Ungrounded section answers report SourceGeminiFallback so
// callers can tell a grounded answer from the model's own knowledge.
const (
	SourceSectionExpert  = "section-expert"
	SourceDocumentExpert = "document-expert"
	SourceGeneral        = "general-assistant"
	SourceGeminiFallback = "gemini-fallback"
	SourceErrorFallback  = "error-fallback"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation history entry.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
