package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Connect returns a ready client, or nil when addr is empty or the server is
// unreachable. Callers treat a nil client as "feature disabled".
func Connect(ctx context.Context, addr string, log *logrus.Logger) *redis.Client {
	if addr == "" {
		log.Warn("REDIS_ADDRESS not set; stock key attempt limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", addr).Warn("Failed to connect to Redis; stock key attempt limiting disabled")
		_ = client.Close()
		return nil
	}

	log.WithField("addr", addr).Info("Redis connected")
	return client
}
