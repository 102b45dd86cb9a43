package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyflow/internal/model"
)

// SurveyCache keeps published survey snapshots close to the respondent path.
// Snapshots are immutable, so entries are never updated in place.
type SurveyCache interface {
	SetPublished(ctx context.Context, published *model.PublishedSurvey) error
	GetPublished(ctx context.Context, surveyID string, version int) (*model.PublishedSurvey, error)
	SetLatest(ctx context.Context, surveyID string, version int) error
	GetLatest(ctx context.Context, surveyID string) (int, error)
	Invalidate(ctx context.Context, surveyID string) error
}

type surveyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSurveyCache creates a new survey cache
func NewSurveyCache(client *redis.Client) SurveyCache {
	return &surveyCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *surveyCache) publishedKey(surveyID string, version int) string {
	return fmt.Sprintf("survey:%s:v%d", surveyID, version)
}

func (c *surveyCache) latestKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:latest", surveyID)
}

func (c *surveyCache) SetPublished(ctx context.Context, published *model.PublishedSurvey) error {
	data, err := json.Marshal(published)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.publishedKey(published.SurveyID, published.Version), data, c.ttl).Err()
}

func (c *surveyCache) GetPublished(ctx context.Context, surveyID string, version int) (*model.PublishedSurvey, error) {
	data, err := c.client.Get(ctx, c.publishedKey(surveyID, version)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var published model.PublishedSurvey
	if err := json.Unmarshal([]byte(data), &published); err != nil {
		return nil, err
	}
	return &published, nil
}

func (c *surveyCache) SetLatest(ctx context.Context, surveyID string, version int) error {
	return c.client.Set(ctx, c.latestKey(surveyID), version, c.ttl).Err()
}

// GetLatest returns 0 when the latest version is not cached
func (c *surveyCache) GetLatest(ctx context.Context, surveyID string) (int, error) {
	version, err := c.client.Get(ctx, c.latestKey(surveyID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

// Invalidate drops the latest pointer. Versioned snapshots stay valid for
// sessions already pinned to them and expire on their own.
func (c *surveyCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.latestKey(surveyID)).Err()
}
