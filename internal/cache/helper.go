package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON fetches a key and unmarshals it into dest. Returns false when the
// key is absent or the cache is unavailable.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("cache unmarshal %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key. Best-effort; failures are
// logged and swallowed.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache marshal %s: %v", key, err)
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

// Aside implements the cache-aside pattern: try the cache first, otherwise
// run fetch (which must populate dest) and store the result.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	if GetJSON(ctx, key, dest) {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}
