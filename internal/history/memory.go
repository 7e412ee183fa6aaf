// Package history implements the bounded per-conversation turn store.
package history

import (
	"context"
	"sync"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
)

// MemoryStore keeps conversation history in process memory. Each
// conversation owns a mutex so concurrent appends for the same id serialize
// while different conversations proceed in parallel.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
	limit         int
}

type conversation struct {
	mu    sync.Mutex
	turns []assist.Turn
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = 10
	}
	return &MemoryStore{
		conversations: make(map[string]*conversation),
		limit:         limit,
	}
}

func (s *MemoryStore) Recent(ctx context.Context, conversationID string) ([]assist.Turn, error) {
	s.mu.RLock()
	conv, ok := s.conversations[conversationID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	out := make([]assist.Turn, len(conv.turns))
	copy(out, conv.turns)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, conversationID string, turns ...assist.Turn) error {
	conv := s.conversation(conversationID)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.turns = append(conv.turns, turns...)
	if over := len(conv.turns) - s.limit; over > 0 {
		// FIFO eviction, oldest first.
		conv.turns = append([]assist.Turn(nil), conv.turns[over:]...)
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, conversationID)
	return nil
}

func (s *MemoryStore) conversation(id string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = &conversation{}
		s.conversations[id] = conv
	}
	return conv
}

var _ assist.HistoryStore = (*MemoryStore)(nil)
