package assist

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is the only condition rejected before routing.
var ErrEmptyQuery = errors.New("query text is required")

// GenerationErrorKind distinguishes provider failure classes so callers can
// tell "try again shortly" from "service misconfigured".
type GenerationErrorKind string

const (
	GenerationAuth      GenerationErrorKind = "auth"
	GenerationQuota     GenerationErrorKind = "quota"
	GenerationRefused   GenerationErrorKind = "refused"
	GenerationTransient GenerationErrorKind = "transient"
)

// GenerationError wraps a provider failure with its classified kind.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RetrievalError marks the vector index or embedder as unreachable. Handlers
// treat it as non-fatal and proceed ungrounded.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval unavailable: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// UserMessage maps a handler failure to the user-safe apology carried by the
// error-fallback Answer.
func UserMessage(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		switch ge.Kind {
		case GenerationQuota:
			return "The assistant has hit its request quota. Please try again in a little while."
		case GenerationAuth:
			return "The assistant service is misconfigured. Please contact the operator."
		case GenerationRefused:
			return "I couldn't produce an answer for that request. Please rephrase your question."
		default:
			return "The assistant is temporarily unavailable. Please try again shortly."
		}
	}
	return "Sorry, something went wrong while answering. Please try again."
}
