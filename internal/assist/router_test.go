package assist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nyayasetu/legal-assistant-rag/internal/index"
)

const testDim = 4

type stubEmbed struct {
	vec []float32
	err error
}

func (s *stubEmbed) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.vec != nil {
		return s.vec, nil
	}
	return []float32{1, 0, 0, 0}, nil
}

type stubHistory struct {
	mu    sync.Mutex
	turns map[string][]Turn
}

func newStubHistory() *stubHistory {
	return &stubHistory{turns: make(map[string][]Turn)}
}

func (s *stubHistory) Recent(ctx context.Context, id string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns[id]...), nil
}

func (s *stubHistory) Append(ctx context.Context, id string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[id] = append(s.turns[id], turns...)
	return nil
}

func (s *stubHistory) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, id)
	return nil
}

type routerFixture struct {
	router  *Router
	gen     *stubGen
	idx     *index.MemoryIndex
	history *stubHistory
}

func newRouterFixture(t *testing.T, gen *stubGen, embed *stubEmbed) *routerFixture {
	t.Helper()
	log := testLogger()
	idx := index.NewMemoryIndex(testDim)
	hist := newStubHistory()

	classifier := NewClassifier(gen, log)
	sections := NewSectionExpert(embed, gen, idx, 5, 0.25, log)
	documents := NewDocumentExpert(embed, gen, idx, sections, 5, 0.25, log)
	general := NewGeneralHandler(gen, log)
	router := NewRouter(classifier, sections, documents, general, idx, hist, 0.4, log)

	return &routerFixture{router: router, gen: gen, idx: idx, history: hist}
}

func seedCorpus(t *testing.T, idx *index.MemoryIndex, text string, vec []float32) {
	t.Helper()
	_, err := idx.Insert(context.Background(), &index.Chunk{
		Kind:   index.KindCorpus,
		Title:  "IPC Section 420",
		Text:   text,
		Source: "ipc.md",
	}, vec)
	if err != nil {
		t.Fatalf("seed corpus: %v", err)
	}
}

func TestRouteRejectsEmptyQuery(t *testing.T) {
	f := newRouterFixture(t, &stubGen{}, &stubEmbed{})

	_, err := f.router.Route(context.Background(), Query{Text: "   ", ConversationID: "c1"})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

// Scenario: section query with a populated index retrieves the matching chunk
// and produces a grounded, cited answer.
func TestRouteSectionQueryGrounded(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"SECTION_QUERY","confidence":0.9}`,
		textResp: "Section 420 punishes cheating and dishonestly inducing delivery of property with up to 7 years imprisonment.",
	}
	f := newRouterFixture(t, gen, &stubEmbed{vec: []float32{1, 0, 0, 0}})
	seedCorpus(t, f.idx,
		"Section 420: Cheating and dishonestly inducing delivery of property, punishable with up to 7 years imprisonment",
		[]float32{1, 0, 0, 0})

	ans, err := f.router.Route(context.Background(), Query{Text: "What is Section 420?", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Source != SourceSectionExpert {
		t.Errorf("expected source %q, got %q", SourceSectionExpert, ans.Source)
	}
	if ans.Confidence < 0.7 {
		t.Errorf("grounded answer should have confidence >= 0.7, got %f", ans.Confidence)
	}
	if len(ans.Citations) == 0 {
		t.Fatal("grounded answer must carry citations")
	}
	if !strings.Contains(ans.Response, "cheating") || !strings.Contains(ans.Response, "7 years") {
		t.Errorf("answer should reference the retrieved chunk, got %q", ans.Response)
	}
}

// Scenario: a chatty greeting goes to the general handler at mid confidence
// with no citations.
func TestRouteGeneralGreeting(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"GENERAL","confidence":0.95}`,
		textResp: "Hello! I'm doing well. How can I help you with Indian law today?",
	}
	f := newRouterFixture(t, gen, &stubEmbed{})

	ans, err := f.router.Route(context.Background(), Query{Text: "Hello, how are you?", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Source != SourceGeneral {
		t.Errorf("expected source %q, got %q", SourceGeneral, ans.Source)
	}
	if ans.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6, got %f", ans.Confidence)
	}
	if len(ans.Citations) != 0 {
		t.Errorf("general answers carry no citations, got %d", len(ans.Citations))
	}
}

// Scenario: DOCUMENT_QUERY with no uploaded chunks must never reach the
// document expert; it falls back to the section path.
func TestRouteDocumentQueryWithoutUploads(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"DOCUMENT_QUERY","confidence":0.9}`,
		textResp: "Here is what the law says about notice periods.",
	}
	f := newRouterFixture(t, gen, &stubEmbed{vec: []float32{1, 0, 0, 0}})
	seedCorpus(t, f.idx, "Notice periods are governed by contract law.", []float32{1, 0, 0, 0})

	ans, err := f.router.Route(context.Background(), Query{Text: "What does my contract say?", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Source == SourceDocumentExpert {
		t.Errorf("document expert must not run on an empty upload index, got source %q", ans.Source)
	}
}

func TestRouteDocumentQueryWithUploads(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"DOCUMENT_QUERY","confidence":0.9}`,
		textResp: "Your agreement sets a 30 day notice period (rental-agreement.pdf, page 2).",
	}
	f := newRouterFixture(t, gen, &stubEmbed{vec: []float32{1, 0, 0, 0}})
	_, err := f.idx.Insert(context.Background(), &index.Chunk{
		Kind:   index.KindUpload,
		Title:  "rental-agreement.pdf p.2",
		Text:   "Either party may terminate this agreement with 30 days written notice.",
		Source: "rental-agreement.pdf",
		Page:   2,
	}, []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	ans, err := f.router.Route(context.Background(), Query{Text: "What is the notice period in my agreement?", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Source != SourceDocumentExpert {
		t.Fatalf("expected document expert, got source %q", ans.Source)
	}
	if len(ans.Citations) == 0 {
		t.Fatal("document answers must carry citations")
	}
	if ans.Citations[0].Metadata["page"] != "2" {
		t.Errorf("citation should carry page metadata, got %v", ans.Citations[0].Metadata)
	}
}

// Low classifier confidence always routes to the general handler, whatever
// the reported category.
func TestRouteLowConfidenceFallsBackToGeneral(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"SECTION_QUERY","confidence":0.2}`,
		textResp: "Could you tell me more about what you need?",
	}
	f := newRouterFixture(t, gen, &stubEmbed{})

	for i := 0; i < 3; i++ {
		ans, err := f.router.Route(context.Background(), Query{Text: "What is Section 420?", Language: "English", ConversationID: "c1"})
		if err != nil {
			t.Fatalf("route failed: %v", err)
		}
		if ans.Source != SourceGeneral {
			t.Fatalf("low-confidence routing must pick the general handler, got %q", ans.Source)
		}
	}
}

// Below the relevance floor retrieval is treated as empty: no citations and
// a penalized confidence with the gemini-fallback marker.
func TestRouteSectionQueryBelowFloorIsUngrounded(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"SECTION_QUERY","confidence":0.9}`,
		textResp: "From general knowledge: Section 999 does not exist in the IPC.",
	}
	// Orthogonal query vector, so similarity is 0 and nothing clears the floor.
	f := newRouterFixture(t, gen, &stubEmbed{vec: []float32{0, 1, 0, 0}})
	seedCorpus(t, f.idx, "Section 420: Cheating.", []float32{1, 0, 0, 0})

	ans, err := f.router.Route(context.Background(), Query{Text: "What is Section 999?", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Source != SourceGeminiFallback {
		t.Errorf("expected source %q, got %q", SourceGeminiFallback, ans.Source)
	}
	if len(ans.Citations) != 0 {
		t.Errorf("ungrounded answers carry no citations, got %d", len(ans.Citations))
	}
	if ans.Confidence > 0.5 {
		t.Errorf("ungrounded confidence must be <= 0.5, got %f", ans.Confidence)
	}
}

// Scenario: quota exhaustion surfaces as an error-fallback answer whose
// message is distinguishable from a generic failure.
func TestRouteQuotaErrorBecomesErrorFallback(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"GENERAL","confidence":0.9}`,
		textErr:  &GenerationError{Kind: GenerationQuota, Err: errors.New("429 quota exceeded")},
	}
	f := newRouterFixture(t, gen, &stubEmbed{})

	ans, err := f.router.Route(context.Background(), Query{Text: "Hello", Language: "English", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	if ans.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", ans.Confidence)
	}
	if ans.Source != SourceErrorFallback {
		t.Errorf("expected source %q, got %q", SourceErrorFallback, ans.Source)
	}
	if !strings.Contains(ans.Response, "quota") {
		t.Errorf("quota message should mention the quota, got %q", ans.Response)
	}
}

// A provider that always times out still yields a well-formed answer from
// every handler path, never an error past the router.
func TestRouteTransientErrorNeverEscapes(t *testing.T) {
	transient := &GenerationError{Kind: GenerationTransient, Err: context.DeadlineExceeded}

	for _, jsonResp := range []string{
		`{"category":"SECTION_QUERY","confidence":0.9}`,
		`{"category":"GENERAL","confidence":0.9}`,
	} {
		gen := &stubGen{jsonResp: jsonResp, textErr: transient}
		f := newRouterFixture(t, gen, &stubEmbed{})

		ans, err := f.router.Route(context.Background(), Query{Text: "Explain Section 302", Language: "English", ConversationID: "c1"})
		if err != nil {
			t.Fatalf("route must not fail: %v", err)
		}
		if ans.Confidence != 0 || ans.Source != SourceErrorFallback {
			t.Errorf("expected error-fallback answer, got source=%q confidence=%f", ans.Source, ans.Confidence)
		}
		if ans.Response == "" {
			t.Error("error-fallback answer must carry a user-safe message")
		}
	}
}

func TestRouteAppendsBothTurns(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"GENERAL","confidence":0.9}`,
		textResp: "Hi!",
	}
	f := newRouterFixture(t, gen, &stubEmbed{})

	_, err := f.router.Route(context.Background(), Query{Text: "Hello", Language: "English", ConversationID: "c7"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	turns, _ := f.history.Recent(context.Background(), "c7")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns appended, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Errorf("expected user then assistant, got %s then %s", turns[0].Role, turns[1].Role)
	}
}

func TestRouteDetectsLanguageWhenAuto(t *testing.T) {
	gen := &stubGen{
		jsonResp: `{"category":"GENERAL","confidence":0.9}`,
		textResp: "Hello!",
	}
	f := newRouterFixture(t, gen, &stubEmbed{})

	ans, err := f.router.Route(context.Background(), Query{Text: "Hello, how are you today my friend?", Language: LanguageAuto, ConversationID: "c1"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}
	if ans.Language != "English" {
		t.Errorf("expected detected English, got %q", ans.Language)
	}
}
