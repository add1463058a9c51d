package spotify

import (
	"context"
	"encoding/json"
	"time"
)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// CachedClient keeps resolved tracks in a TTL cache so repeated requests
// for the same song skip the Web API.
type CachedClient struct {
	client Metadata
	cache  Cache
	ttl    time.Duration
}

func NewCachedClient(client Metadata, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

func (c *CachedClient) Track(ctx context.Context, ref string) (*TrackInfo, error) {
	id, err := ParseTrackID(ref)
	if err != nil {
		return nil, err
	}
	cacheKey := "spotify:track:" + id

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var cached TrackInfo
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return &cached, nil
		}
	}

	info, err := c.client.Track(ctx, ref)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(info); marshalErr == nil {
		_ = c.cache.SetCache(cacheKey, data, c.ttl)
	}
	return info, nil
}
