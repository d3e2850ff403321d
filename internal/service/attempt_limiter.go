package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AttemptCounter keeps failed-attempt counters that expire on their own.
type AttemptCounter interface {
	Count(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

type redisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) AttemptCounter {
	return &redisCounter{client: client}
}

func (r *redisCounter) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// The window starts at the first failure.
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *redisCounter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// AttemptLimiter blocks an actor after too many wrong master keys. A nil
// counter disables it, and counter errors never block anyone.
type AttemptLimiter struct {
	counter AttemptCounter
	max     int64
	window  time.Duration
	log     *logrus.Logger
}

func NewAttemptLimiter(counter AttemptCounter, max int64, window time.Duration, log *logrus.Logger) *AttemptLimiter {
	return &AttemptLimiter{counter: counter, max: max, window: window, log: log}
}

func attemptKey(actorID string) string {
	return "stock_key_attempts:" + actorID
}

func (l *AttemptLimiter) Blocked(ctx context.Context, actorID string) bool {
	if l == nil || l.counter == nil || l.max <= 0 {
		return false
	}
	n, err := l.counter.Count(ctx, attemptKey(actorID))
	if err != nil {
		l.log.WithError(err).WithField("actor", actorID).Warn("attempt counter unavailable")
		return false
	}
	return n >= l.max
}

func (l *AttemptLimiter) Fail(ctx context.Context, actorID string) {
	if l == nil || l.counter == nil {
		return
	}
	n, err := l.counter.Incr(ctx, attemptKey(actorID), l.window)
	if err != nil {
		l.log.WithError(err).WithField("actor", actorID).Warn("failed to record master key attempt")
		return
	}
	if n >= l.max {
		l.log.WithFields(logrus.Fields{"actor": actorID, "attempts": n}).Warn("master key attempts exhausted")
	}
}

func (l *AttemptLimiter) Reset(ctx context.Context, actorID string) {
	if l == nil || l.counter == nil {
		return
	}
	if err := l.counter.Reset(ctx, attemptKey(actorID)); err != nil {
		l.log.WithError(err).WithField("actor", actorID).Warn("failed to reset master key attempts")
	}
}
