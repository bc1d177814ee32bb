// Package limiter enforces per-API-key requests-per-minute and
// tokens-per-minute ceilings with a sliding-window counter kept in the
// shared store.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowSize is the counting window in seconds.
const windowSize = 60

const (
	requestScope = "rate_limit"
	tokenScope   = "token_limit"
	tierKeyFmt   = "user_tier:%s"
)

// Tier limits in requests per minute. A key with no recorded tier (or
// an unrecognized one) falls back to the configured default.
var tierLimits = map[string]int64{
	"free":       5,
	"premium":    60,
	"enterprise": 300,
}

type Limiter struct {
	client     redis.UniversalClient
	defaultRPM int64
	tpmLimit   int64
	now        func() time.Time
}

// Result is a single admission decision.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetTime int64
}

type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(client redis.UniversalClient, defaultRPM, tpmLimit int64, opts ...Option) *Limiter {
	l := &Limiter{
		client:     client,
		defaultRPM: defaultRPM,
		tpmLimit:   tpmLimit,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AllowRequest admits or rejects one request for apiKey against its
// per-minute request ceiling. Store command errors fail open: the
// request is admitted and the error is returned for logging.
func (l *Limiter) AllowRequest(ctx context.Context, apiKey string) (Result, error) {
	return l.admit(ctx, requestScope, apiKey, 1, l.requestLimit(ctx, apiKey))
}

// AllowTokens admits or rejects a request estimated to consume cost
// tokens against the per-minute token ceiling.
func (l *Limiter) AllowTokens(ctx context.Context, apiKey string, cost int64) (Result, error) {
	return l.admit(ctx, tokenScope, apiKey, cost, l.tpmLimit)
}

// ChargeTokens records tokens consumed by a completed response. No
// admission check: the spend already happened, the next window sees it.
func (l *Limiter) ChargeTokens(ctx context.Context, apiKey string, cost int64) error {
	if cost <= 0 {
		return nil
	}
	now := l.now().Unix()
	key := windowKey(tokenScope, apiKey, now/windowSize)

	pipe := l.client.TxPipeline()
	pipe.IncrBy(ctx, key, cost)
	pipe.Expire(ctx, key, 2*windowSize*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("charge %d tokens for %s: %w", cost, apiKey, err)
	}
	return nil
}

// admit runs the sliding-window check: increment the current window,
// weigh in the previous window by the unelapsed fraction, and roll the
// increment back when the estimate exceeds the limit. A rejected
// request must not consume quota.
func (l *Limiter) admit(ctx context.Context, scope, apiKey string, cost, limit int64) (Result, error) {
	now := l.now().Unix()
	window := now / windowSize
	windowStart := window * windowSize
	resetTime := windowStart + windowSize

	open := Result{Allowed: true, Remaining: limit, ResetTime: now + windowSize}

	key := windowKey(scope, apiKey, window)
	prevKey := windowKey(scope, apiKey, window-1)

	pipe := l.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, cost)
	pipe.Expire(ctx, key, 2*windowSize*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return open, fmt.Errorf("increment %s: %w", key, err)
	}
	current := incr.Val()

	prev, err := l.client.Get(ctx, prevKey).Int64()
	if err != nil && err != redis.Nil {
		return open, fmt.Errorf("read previous window %s: %w", prevKey, err)
	}

	elapsedRatio := float64(now-windowStart) / windowSize
	estimated := int64(float64(prev)*(1-elapsedRatio)) + current

	if estimated > limit {
		l.client.DecrBy(ctx, key, cost)
		return Result{Allowed: false, Remaining: 0, ResetTime: resetTime}, nil
	}

	remaining := limit - estimated
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, ResetTime: resetTime}, nil
}

// requestLimit resolves the per-minute request ceiling for a key from
// its stored tier.
func (l *Limiter) requestLimit(ctx context.Context, apiKey string) int64 {
	tier, err := l.client.Get(ctx, fmt.Sprintf(tierKeyFmt, apiKey)).Result()
	if err != nil {
		return l.defaultRPM
	}
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return l.defaultRPM
}

// windowKey builds a counter key. The api key is wrapped in a cluster
// hash tag so the MULTI in admit touches a single slot.
func windowKey(scope, apiKey string, window int64) string {
	return fmt.Sprintf("%s:{%s}:%d", scope, apiKey, window)
}

// EstimateTokens approximates the token count of a prompt or response
// at four characters per token, never less than one.
func EstimateTokens(text string) int64 {
	n := int64(len(text)) / 4
	if n < 1 {
		return 1
	}
	return n
}
