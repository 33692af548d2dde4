// Copyright (c) 2026 Yomikata. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yomikata/ingest/internal/platform/constants"
)

// subjectCacheTTL bounds how long a fetched subject document is reused
// before the next scan re-queries Bangumi.
const subjectCacheTTL = 24 * time.Hour

// Cache is a Redis-backed cache of previously fetched subject documents,
// keyed by Bangumi subject id.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a Redis-backed Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Set stores subject under id with the package's fixed TTL.
func (c *Cache) Set(ctx context.Context, id int64, subject json.RawMessage) error {
	key := fmt.Sprintf("%s%d", constants.RedisPrefixMetadataSubject, id)

	if err := c.client.Set(ctx, key, []byte(subject), subjectCacheTTL).Err(); err != nil {
		return fmt.Errorf("metadata: cache set failed: %w", err)
	}
	return nil
}

// Get retrieves the cached subject document for id. A cache miss returns
// (nil, false, nil) rather than an error.
func (c *Cache) Get(ctx context.Context, id int64) (json.RawMessage, bool, error) {
	key := fmt.Sprintf("%s%d", constants.RedisPrefixMetadataSubject, id)

	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("metadata: cache get failed: %w", err)
	}

	return json.RawMessage(value), true, nil
}
