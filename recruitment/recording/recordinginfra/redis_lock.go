package recordinginfra

import (
	"context"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisBlockLock implements recording.BlockLock with SET NX and a TTL
type RedisBlockLock struct {
	client *redis.Client
	prefix string
}

var _ recording.BlockLock = (*RedisBlockLock)(nil)

func NewRedisBlockLock(client *redis.Client, prefix string) *RedisBlockLock {
	if prefix == "" {
		prefix = "recording:lock"
	}
	return &RedisBlockLock{client: client, prefix: prefix}
}

func (l *RedisBlockLock) key(id kernel.UploadID) string {
	return fmt.Sprintf("%s:%s", l.prefix, id)
}

func (l *RedisBlockLock) Acquire(ctx context.Context, id kernel.UploadID, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	key := l.key(id)

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquire upload lock %s: %w", id, err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release := func() {
		// the request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			logx.Warnf("Failed to release upload lock %s: %v", id, err)
		}
	}
	return release, true, nil
}
