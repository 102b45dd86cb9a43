package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressBoard tracks live respondent progress per survey in a ZSET
type ProgressBoard interface {
	Update(ctx context.Context, surveyID, sessionID string, progress float64) error
	Remove(ctx context.Context, surveyID, sessionID string) error
	Active(ctx context.Context, surveyID string, limit int) ([]ProgressEntry, error)
	Count(ctx context.Context, surveyID string) (int64, error)
}

// ProgressEntry is one active session on the board
type ProgressEntry struct {
	SessionID string  `json:"sessionId"`
	Progress  float64 `json:"progress"`
}

type progressBoard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressBoard creates a new progress board
func NewProgressBoard(client *redis.Client, ttl time.Duration) ProgressBoard {
	return &progressBoard{
		client: client,
		ttl:    ttl,
	}
}

func (c *progressBoard) key(surveyID string) string {
	return fmt.Sprintf("survey:%s:progress", surveyID)
}

func (c *progressBoard) Update(ctx context.Context, surveyID, sessionID string, progress float64) error {
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.key(surveyID), redis.Z{
		Score:  progress,
		Member: sessionID,
	})
	pipe.Expire(ctx, c.key(surveyID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *progressBoard) Remove(ctx context.Context, surveyID, sessionID string) error {
	return c.client.ZRem(ctx, c.key(surveyID), sessionID).Err()
}

// Active lists sessions furthest along first
func (c *progressBoard) Active(ctx context.Context, surveyID string, limit int) ([]ProgressEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(surveyID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ProgressEntry, len(results))
	for i, z := range results {
		entries[i] = ProgressEntry{
			SessionID: z.Member.(string),
			Progress:  z.Score,
		}
	}
	return entries, nil
}

func (c *progressBoard) Count(ctx context.Context, surveyID string) (int64, error) {
	return c.client.ZCard(ctx, c.key(surveyID)).Result()
}
