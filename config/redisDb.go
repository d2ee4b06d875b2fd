package config

import (
	"context"
	"log"
	"os"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis sets up the redis client and the distributed lock client.
// Redis is optional here: when REDIS_ADDRESS is unset the service runs with
// in-process locking only, which is fine for a single replica.
func ConnectRedis() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Printf("REDIS_ADDRESS not set; running without distributed locks")
		return
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("failed to connect redis at %s: %v; running without distributed locks", address, err)
		rdb = nil
		return
	}

	locker = redislock.New(rdb)
	log.Printf("connected to redis")
}
