package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredRedisIsNotReady(t *testing.T) {
	var r *Redis
	ctx := context.Background()

	assert.Error(t, r.Ping(ctx))
	_, err := r.QueueDepth(ctx, "helpdesk:mail")
	assert.Error(t, err)
	r.Close()
}

func TestQueueDepthSurfacesConnectionErrors(t *testing.T) {
	r := &Redis{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer r.Close()

	depth, err := r.QueueDepth(context.Background(), "helpdesk:mail")
	assert.Error(t, err)
	assert.Zero(t, depth)
}
