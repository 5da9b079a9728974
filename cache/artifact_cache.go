package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Hummify/model"

	"github.com/redis/go-redis/v9"
)

// ArtifactCache caches converted-artifact metadata so that promote and
// playback lookups shortly after a conversion avoid a database round trip.
// Entries expire with the retention window; the sweeper also invalidates
// entries it reclaims.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache creates a cache around the shared redis client. A nil
// client yields a disabled cache whose operations are no-ops.
func NewArtifactCache(client *redis.Client, ttl time.Duration) *ArtifactCache {
	return &ArtifactCache{client: client, ttl: ttl}
}

func artifactKey(id int64) string {
	return fmt.Sprintf("artifact:converted:%d", id)
}

// Get returns the cached artifact or nil on a miss.
func (c *ArtifactCache) Get(ctx context.Context, id int64) (*model.ConvertedArtifact, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, artifactKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %d from cache: %w", id, err)
	}

	var artifact model.ConvertedArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode cached artifact %d: %w", id, err)
	}
	return &artifact, nil
}

// Set stores the artifact with the configured TTL.
func (c *ArtifactCache) Set(ctx context.Context, artifact *model.ConvertedArtifact) error {
	if c == nil || c.client == nil || artifact == nil {
		return nil
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode artifact %d: %w", artifact.ID, err)
	}
	if err := c.client.Set(ctx, artifactKey(artifact.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache artifact %d: %w", artifact.ID, err)
	}
	return nil
}

// Invalidate drops a cached artifact, e.g. after the sweeper reclaims it.
func (c *ArtifactCache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, artifactKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate artifact %d: %w", id, err)
	}
	return nil
}
