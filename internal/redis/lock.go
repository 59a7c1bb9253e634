package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lock.Locker shared by every process using the same Redis.
// The TTL bounds how long a crashed holder can block a key.
type Locker struct {
	client *Client
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

func NewLocker(client *Client, ttl, retry time.Duration, logger *zap.Logger) *Locker {
	return &Locker{client: client, ttl: ttl, retry: retry, logger: logger}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// Release even if the caller's context is already done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, l.client.rdb, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock, it expires with its ttl",
				zap.String("key", key),
				zap.Duration("ttl", l.ttl),
				zap.Error(err),
			)
		}
	}, nil
}
