package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ScoreCache handles Redis ZSET operations for per-quiz live standings
type ScoreCache interface {
	UpdateScore(ctx context.Context, quizID, resultID string, total float64) error
	GetTop(ctx context.Context, quizID string, limit int) ([]Standing, error)
	Clear(ctx context.Context, quizID string) error
	// ClearAll removes the standings of every quiz, including quizzes that
	// no longer exist in the quiz collection.
	ClearAll(ctx context.Context) error
}

// Standing is a single entry in a quiz's live ranking, keyed by result id
type Standing struct {
	ResultID string  `json:"resultId"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

type scoreCache struct {
	client *redis.Client
}

// NewScoreCache creates a new score cache
func NewScoreCache(client *redis.Client) ScoreCache {
	return &scoreCache{
		client: client,
	}
}

func (c *scoreCache) key(quizID string) string {
	return fmt.Sprintf("quiz:%s:scores", quizID)
}

func (c *scoreCache) UpdateScore(ctx context.Context, quizID, resultID string, total float64) error {
	return c.client.ZAdd(ctx, c.key(quizID), redis.Z{
		Score:  total,
		Member: resultID,
	}).Err()
}

func (c *scoreCache) GetTop(ctx context.Context, quizID string, limit int) ([]Standing, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(quizID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, len(results))
	for i, z := range results {
		standings[i] = Standing{
			ResultID: z.Member.(string),
			Score:    z.Score,
			Rank:     i + 1,
		}
	}
	return standings, nil
}

func (c *scoreCache) Clear(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *scoreCache) ClearAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "quiz:*:scores", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
