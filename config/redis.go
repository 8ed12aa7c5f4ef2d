package config

import (
	"context"
	"crypto/tls"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var (
	RDB *redis.Client
	Ctx = context.Background()
)

func InitRedis() *redis.Client {
	cfg := LoadConfig()
	log.Printf("Redis Configurations: host=%s, port=%d, username=%s, password=***", cfg.RedisHost, cfg.RedisPort, cfg.RedisUsername)
	opts := &redis.Options{
		Addr:     cfg.RedisHost + ":" + strconv.Itoa(cfg.RedisPort),
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	RDB = redis.NewClient(opts)

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	log.Printf("Connected to Redis")
	return RDB
}
