// Package cache is a small read-through cache in front of the public
// restaurant reads. The cache is optional: without REDIS_URL every call is a
// no-op and handlers hit the database directly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-booking-api/config"
)

var client *redis.Client

const ttl = 5 * time.Minute

// Init connects to Redis when REDIS_URL is set.
func Init() {
	url := config.GetEnv("REDIS_URL", "")
	if url == "" {
		log.Println("Cache disabled (REDIS_URL not set)")
		return
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Println("Cache disabled, invalid REDIS_URL:", err)
		return
	}
	c := redis.NewClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		log.Println("Cache disabled, redis unreachable:", err)
		return
	}
	client = c
	log.Println("Cache connected:", url)
}

// Enabled reports whether a Redis connection is live.
func Enabled() bool { return client != nil }

// RestaurantListKey caches the full public listing; per-restaurant entries
// use RestaurantKey.
const RestaurantListKey = "restaurants:all"

func RestaurantKey(id uint) string { return fmt.Sprintf("restaurants:%d", id) }

// GetJSON loads key into dest, returning false on miss or when disabled.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the package TTL.
func SetJSON(ctx context.Context, key string, value any) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Println("cache set failed:", err)
	}
}

// InvalidateRestaurant drops the listing and the single-restaurant entry.
// Called after every restaurant, menu, or review mutation.
func InvalidateRestaurant(ctx context.Context, id uint) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, RestaurantListKey, RestaurantKey(id)).Err(); err != nil {
		log.Println("cache invalidate failed:", err)
	}
}
