package config

import (
	"log"
	"os"

	"github.com/kamalbuilds/pizza-panic-sub000/services/redis"
)

// Connect_redis connects to the Redis instance named by REDIS_URL
func Connect_redis() (*redis.RedisClient, error) {
	redisUri := os.Getenv("REDIS_URL")
	redisClient, err := redis.InitRedis(redisUri, 0)
	if err != nil {
		log.Printf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
