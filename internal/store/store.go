// Package store owns the connection to the shared ElastiCache
// replication group used for rate-limit counters and usage records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable marks a store that could not be reached at all, as
// opposed to a command failing mid-flight. The handler maps it to 503.
var ErrUnavailable = errors.New("store unavailable")

// NewClient builds a client against the replication group's primary
// endpoint. Options mirror the deployed function's profile: small
// fixed pool, 10s socket timeouts, retries on timeout.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		PoolSize:     5,
		MaxRetries:   3,
	})
}

// Ping verifies connectivity. The handler keeps serving 503s while the
// store is down and recovers without a restart, so a failed startup
// ping is reported, not fatal.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping %s: %v", ErrUnavailable, client.Options().Addr, err)
	}
	return nil
}

// Connect is NewClient plus a ping gate, for callers that need the
// store up before doing anything (the usage CLI, tests).
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := NewClient(addr)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
