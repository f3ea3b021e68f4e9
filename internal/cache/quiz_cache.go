package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"examforge/internal/model"
)

const quizListKey = "quizzes:all"

// QuizCache caches the full quiz list so the read-heavy student endpoints
// do not hit MongoDB on every request. Invalidated on every quiz write.
type QuizCache interface {
	Get(ctx context.Context) ([]*model.Quiz, error)
	Set(ctx context.Context, quizzes []*model.Quiz) error
	Invalidate(ctx context.Context) error
}

type quizCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuizCache creates a new quiz cache
func NewQuizCache(client *redis.Client) QuizCache {
	return &quizCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

func (c *quizCache) Get(ctx context.Context) ([]*model.Quiz, error) {
	data, err := c.client.Get(ctx, quizListKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quizzes []*model.Quiz
	if err := json.Unmarshal([]byte(data), &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *quizCache) Set(ctx context.Context, quizzes []*model.Quiz) error {
	data, err := json.Marshal(quizzes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quizListKey, data, c.ttl).Err()
}

func (c *quizCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, quizListKey).Err()
}
