package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue is a Mailer that pushes messages onto a Redis list for the mail
// worker to pop.
type RedisQueue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisQueue builds a queue on key.
func NewRedisQueue(client *redis.Client, key string, logger *zap.Logger) *RedisQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{client: client, key: key, logger: logger}
}

// Send implements Mailer by enqueueing msg.
func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Consume pops messages until ctx is cancelled and hands each to deliver.
// Delivery failures are logged and the message is dropped.
func (q *RedisQueue) Consume(ctx context.Context, deliver Mailer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Warn("mail queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(result) != 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			q.logger.Warn("dropping malformed mail message", zap.Error(err))
			continue
		}
		if err := deliver.Send(ctx, msg); err != nil {
			q.logger.Warn("mail delivery failed",
				zap.String("kind", string(msg.Kind)),
				zap.String("to", msg.To),
				zap.Error(err))
		}
	}
}
