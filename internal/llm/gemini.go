package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
)

// Config for the Gemini-backed provider.
type Config struct {
	APIKey     string
	ChatModel  string
	EmbedModel string
	EmbedDim   int
	Timeout    time.Duration
}

// GeminiClient implements assist.EmbeddingsClient and assist.GenerationClient
// on top of the Gemini API. Every call has a bounded timeout; transient
// failures get at most one retry, rate-limit and auth failures fail fast, and
// a circuit breaker keeps requests from queueing on a dead provider.
type GeminiClient struct {
	client  *genai.Client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

func NewGeminiClient(ctx context.Context, cfg Config, log *logrus.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &GeminiClient{
		client:  c,
		cfg:     cfg,
		breaker: breaker,
		log:     log.WithField("component", "gemini"),
	}, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil, fmt.Errorf("empty text for embedding")
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.Models.EmbedContent(
		ctx,
		g.cfg.EmbedModel,
		genai.Text(clean),
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(g.cfg.EmbedDim)),
		},
	)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) != g.cfg.EmbedDim {
		return nil, fmt.Errorf("unexpected embedding size %d (expected %d)", len(values), g.cfg.EmbedDim)
	}

	out := make([]float32, len(values))
	copy(out, values)
	return out, nil
}

func (g *GeminiClient) Generate(ctx context.Context, system, user string) (string, error) {
	return g.generate(ctx, system, user, "")
}

func (g *GeminiClient) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	return g.generate(ctx, system, user, "application/json")
}

func (g *GeminiClient) generate(ctx context.Context, system, user, mimeType string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.Text(system)[0],
	}
	if mimeType != "" {
		cfg.ResponseMIMEType = mimeType
	}

	// One retry with backoff for transient failures only; quota and auth
	// rejections are marked permanent and fail fast.
	op := func() (string, error) {
		text, err := g.callOnce(ctx, user, cfg)
		if err != nil {
			var ge *assist.GenerationError
			if errors.As(err, &ge) && ge.Kind == assist.GenerationTransient {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		return text, nil
	}

	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(2),
	)
	if err != nil {
		g.log.WithError(err).Warn("generation failed")
		return "", err
	}
	return text, nil
}

func (g *GeminiClient) callOnce(ctx context.Context, user string, cfg *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.client.Models.GenerateContent(callCtx, g.cfg.ChatModel, genai.Text(user), cfg)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &assist.GenerationError{Kind: assist.GenerationTransient, Err: err}
		}
		return "", classifyError(err)
	}

	resp := result.(*genai.GenerateContentResponse)
	if resp == nil {
		return "", &assist.GenerationError{Kind: assist.GenerationTransient, Err: fmt.Errorf("empty response")}
	}
	if refused, reason := wasRefused(resp); refused {
		return "", &assist.GenerationError{Kind: assist.GenerationRefused, Err: fmt.Errorf("model refused: %s", reason)}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &assist.GenerationError{Kind: assist.GenerationTransient, Err: fmt.Errorf("model returned empty text")}
	}
	return text, nil
}

// wasRefused detects safety blocks, which the API reports as a successful
// call with no usable candidate text.
func wasRefused(resp *genai.GenerateContentResponse) (bool, string) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true, string(resp.PromptFeedback.BlockReason)
	}
	for _, cand := range resp.Candidates {
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
			return true, string(cand.FinishReason)
		}
	}
	return false, ""
}

// classifyError maps a provider failure onto the error taxonomy so handlers
// can report distinct conditions for auth, quota, refusal and transience.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return &assist.GenerationError{Kind: assist.GenerationAuth, Err: err}
		case apiErr.Code == 429:
			return &assist.GenerationError{Kind: assist.GenerationQuota, Err: err}
		case apiErr.Code >= 500:
			return &assist.GenerationError{Kind: assist.GenerationTransient, Err: err}
		default:
			return &assist.GenerationError{Kind: assist.GenerationRefused, Err: err}
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &assist.GenerationError{Kind: assist.GenerationTransient, Err: err}
	}

	return &assist.GenerationError{Kind: assist.GenerationTransient, Err: err}
}

func normalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			if !space {
				b.WriteRune(' ')
				space = true
			}
		} else {
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

var _ assist.EmbeddingsClient = (*GeminiClient)(nil)
var _ assist.GenerationClient = (*GeminiClient)(nil)
