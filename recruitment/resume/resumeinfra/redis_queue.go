package resumeinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/redis/go-redis/v9"
)

// RedisQueue implements resume.Queue with a list for ready batches and a
// sorted set, scored by due time, for delayed ones
type RedisQueue struct {
	client    *redis.Client
	queueName string
}

var _ resume.Queue = (*RedisQueue)(nil)

func NewRedisQueue(client *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{
		client:    client,
		queueName: queueName,
	}
}

func (q *RedisQueue) delayedKey() string { return q.queueName + ":delayed" }

// Enqueue adds a batch to the queue
func (q *RedisQueue) Enqueue(ctx context.Context, batch *resume.Batch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", batch.ID, err)
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		return fmt.Errorf("enqueue batch %s: %w", batch.ID, err)
	}
	return nil
}

// Dequeue blocks for up to timeout; nil data means the queue stayed empty
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue batch: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid result from queue: expected 2 elements, got %d", len(result))
	}
	return []byte(result[1]), nil
}

// EnqueueDelayed schedules a batch for a retry after delay
func (q *RedisQueue) EnqueueDelayed(ctx context.Context, batch *resume.Batch, delay time.Duration) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal delayed batch %s: %w", batch.ID, err)
	}

	score := float64(time.Now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, q.delayedKey(), redis.Z{
		Score:  score,
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue delayed batch %s: %w", batch.ID, err)
	}
	return nil
}

// MoveDelayedToReady moves due batches to the ready list
func (q *RedisQueue) MoveDelayedToReady(ctx context.Context) (int, error) {
	now := float64(time.Now().Unix())

	due, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%f", now),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("get delayed batches: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, member := range due {
		pipe.LPush(ctx, q.queueName, member)
		pipe.ZRem(ctx, q.delayedKey(), member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("move delayed batches to ready: %w", err)
	}
	return len(due), nil
}

// Size returns the ready and delayed batch counts
func (q *RedisQueue) Size(ctx context.Context) (int64, int64, error) {
	pipe := q.client.Pipeline()
	ready := pipe.LLen(ctx, q.queueName)
	delayed := pipe.ZCard(ctx, q.delayedKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("get queue size: %w", err)
	}
	return ready.Val(), delayed.Val(), nil
}

// Ping checks if Redis connection is alive
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}
