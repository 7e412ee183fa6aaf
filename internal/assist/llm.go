package assist

import "context"

// EmbeddingsClient maps text to a fixed-length vector.
type EmbeddingsClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationClient is the narrow boundary to the hosted model. GenerateJSON
// requests a JSON-typed response; the payload is still untrusted and goes
// through a strict parse-or-fallback step in the classifier.
type GenerationClient interface {
	Generate(ctx context.Context, system, user string) (string, error)
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

// HistoryStore keeps the bounded per-conversation history. Append must
// serialize writers for the same conversation id; Recent may observe
// slightly stale state under concurrent appends.
type HistoryStore interface {
	Recent(ctx context.Context, conversationID string) ([]Turn, error)
	Append(ctx context.Context, conversationID string, turns ...Turn) error
	Clear(ctx context.Context, conversationID string) error
}
