package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nyayasetu/legal-assistant-rag/internal/assist"
)

// conversationTTL keeps abandoned conversations from accumulating forever.
const conversationTTL = 24 * time.Hour

// RedisStore keeps conversation history in Redis, one list per conversation.
// RPUSH+LTRIM run in a single transactional pipeline, which both serializes
// concurrent appends for the same key and enforces the FIFO bound atomically.
type RedisStore struct {
	client *redis.Client
	limit  int
}

func NewRedisStore(redisURL string, limit int) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client, limit: limit}, nil
}

func (s *RedisStore) Recent(ctx context.Context, conversationID string) ([]assist.Turn, error) {
	raw, err := s.client.LRange(ctx, turnsKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("history read: %w", err)
	}

	turns := make([]assist.Turn, 0, len(raw))
	for _, item := range raw {
		var t assist.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			// Skip corrupt entries rather than losing the whole history.
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, conversationID string, turns ...assist.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	payloads := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		payloads = append(payloads, data)
	}

	key := turnsKey(conversationID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payloads...)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	pipe.Expire(ctx, key, conversationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history append: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, turnsKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func turnsKey(conversationID string) string {
	return "conversation:" + conversationID + ":turns"
}

var _ assist.HistoryStore = (*RedisStore)(nil)
