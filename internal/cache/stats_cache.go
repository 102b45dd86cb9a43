package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Counter fields kept per survey version
const (
	statStarted   = "started"
	statCompleted = "completed"
)

// FlowStats are the funnel counters of one published version
type FlowStats struct {
	Started   int64            `json:"started"`
	Completed int64            `json:"completed"`
	Reached   map[string]int64 `json:"reached"` // question id -> sessions that displayed it
	Skipped   map[string]int64 `json:"skipped"`
}

// StatsCache counts session starts, completions, and per-question drop-off
type StatsCache interface {
	IncrStarted(ctx context.Context, surveyID string, version int) error
	IncrCompleted(ctx context.Context, surveyID string, version int) error
	IncrReached(ctx context.Context, surveyID string, version int, questionID string) error
	IncrSkipped(ctx context.Context, surveyID string, version int, questionID string) error
	Get(ctx context.Context, surveyID string, version int) (*FlowStats, error)
}

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new stats cache. Counters do not expire.
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
	}
}

func (c *statsCache) key(surveyID string, version int) string {
	return fmt.Sprintf("survey:%s:v%d:stats", surveyID, version)
}

func (c *statsCache) incr(ctx context.Context, surveyID string, version int, field string) error {
	return c.client.HIncrBy(ctx, c.key(surveyID, version), field, 1).Err()
}

func (c *statsCache) IncrStarted(ctx context.Context, surveyID string, version int) error {
	return c.incr(ctx, surveyID, version, statStarted)
}

func (c *statsCache) IncrCompleted(ctx context.Context, surveyID string, version int) error {
	return c.incr(ctx, surveyID, version, statCompleted)
}

func (c *statsCache) IncrReached(ctx context.Context, surveyID string, version int, questionID string) error {
	return c.incr(ctx, surveyID, version, "reached:"+questionID)
}

func (c *statsCache) IncrSkipped(ctx context.Context, surveyID string, version int, questionID string) error {
	return c.incr(ctx, surveyID, version, "skipped:"+questionID)
}

func (c *statsCache) Get(ctx context.Context, surveyID string, version int) (*FlowStats, error) {
	fields, err := c.client.HGetAll(ctx, c.key(surveyID, version)).Result()
	if err != nil {
		return nil, err
	}

	stats := &FlowStats{
		Reached: make(map[string]int64),
		Skipped: make(map[string]int64),
	}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stats field %s: %w", field, err)
		}
		if id, ok := strings.CutPrefix(field, "reached:"); ok {
			stats.Reached[id] = n
			continue
		}
		if id, ok := strings.CutPrefix(field, "skipped:"); ok {
			stats.Skipped[id] = n
			continue
		}
		switch field {
		case statStarted:
			stats.Started = n
		case statCompleted:
			stats.Completed = n
		}
	}
	return stats, nil
}
