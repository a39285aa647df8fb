package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	game_constants "github.com/kamalbuilds/pizza-panic-sub000/constants/game"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles the Redis side of persistence: the recent-games cache
// and the per-game event channel used to fan events out across instances.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(addr string, db int) *RedisClient {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// InitRedis initializes the Redis connection and verifies it with a ping.
func InitRedis(addr string, db int) (*RedisClient, error) {
	rc := NewRedisClient(addr, db)

	if err := rc.client.Ping(rc.ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis")
	return rc, nil
}

// CloseRedis gracefully closes the Redis connection
func CloseRedis(rc *RedisClient) error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %v", err)
	}
	return nil
}

// GameSummary is the compact entry kept in the recent-games cache.
type GameSummary struct {
	ID      string    `json:"id"`
	Result  string    `json:"result"`
	Rounds  int       `json:"rounds"`
	Stakes  string    `json:"stakes,omitempty"`
	Players []string  `json:"players"`
	EndedAt time.Time `json:"ended_at"`
}

// PushRecentGame prepends the summary to the recent-games list, trimmed to a
// fixed size.
func (rc *RedisClient) PushRecentGame(summary GameSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error marshaling game summary: %v", err)
	}

	pipe := rc.client.Pipeline()
	pipe.LPush(rc.ctx, FormatRecentGamesKey(), data)
	pipe.LTrim(rc.ctx, FormatRecentGamesKey(), 0, int64(game_constants.RecentGamesCacheSize-1))
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error caching game summary: %v", err)
	}
	return nil
}

// GetRecentGames returns up to limit cached summaries, newest first.
func (rc *RedisClient) GetRecentGames(limit int) ([]GameSummary, error) {
	if limit <= 0 || limit > game_constants.RecentGamesCacheSize {
		limit = game_constants.RecentGamesCacheSize
	}
	raw, err := rc.client.LRange(rc.ctx, FormatRecentGamesKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading recent games: %v", err)
	}

	summaries := make([]GameSummary, 0, len(raw))
	for _, item := range raw {
		var s GameSummary
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			log.Printf("[REDIS-ERROR] skipping malformed cached summary: %v", err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// PublishEvent pushes a serialized game event onto the game's channel so
// sibling instances can relay it to their own websocket clients.
func (rc *RedisClient) PublishEvent(gameID string, data []byte) error {
	if err := rc.client.Publish(rc.ctx, FormatGameChannel(gameID), data).Err(); err != nil {
		return fmt.Errorf("error publishing event for game %s: %v", gameID, err)
	}
	return nil
}

// SubscribeGame subscribes to the game's event channel.
func (rc *RedisClient) SubscribeGame(gameID string) *redis.PubSub {
	return rc.client.Subscribe(rc.ctx, FormatGameChannel(gameID))
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
