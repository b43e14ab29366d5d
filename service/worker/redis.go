package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Check that Redis answers at addr before the queue is wired in
func PingRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}
