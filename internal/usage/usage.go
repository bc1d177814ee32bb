// Package usage keeps per-API-key consumption counters in the shared
// store at minute, hour, day, and lifetime granularity.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	minuteTTL = time.Hour
	hourTTL   = 7 * 24 * time.Hour
	dailyTTL  = 30 * 24 * time.Hour
)

type Recorder struct {
	client redis.UniversalClient
	now    func() time.Time
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func NewRecorder(client redis.UniversalClient, opts ...Option) *Recorder {
	r := &Recorder{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record bumps the request counters for apiKey. All keys carry the
// same hash tag so the pipeline lands on one cluster slot.
func (r *Recorder) Record(ctx context.Context, apiKey string) error {
	now := r.now().UTC()

	pipe := r.client.TxPipeline()

	minuteKey := fmt.Sprintf("usage:minute:{%s}:%d", apiKey, now.Unix()/60)
	pipe.Incr(ctx, minuteKey)
	pipe.Expire(ctx, minuteKey, minuteTTL)

	hourKey := fmt.Sprintf("usage:hour:{%s}:%s", apiKey, now.Format("2006-01-02:15"))
	pipe.Incr(ctx, hourKey)
	pipe.Expire(ctx, hourKey, hourTTL)

	dailyKey := fmt.Sprintf("usage:daily:{%s}:%s", apiKey, now.Format("2006-01-02"))
	pipe.Incr(ctx, dailyKey)
	pipe.Expire(ctx, dailyKey, dailyTTL)

	pipe.Incr(ctx, fmt.Sprintf("usage:total:{%s}", apiKey))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage for %s: %w", apiKey, err)
	}
	return nil
}

// RecordTokens bumps the token counters for apiKey by the actual
// consumption of a completed response.
func (r *Recorder) RecordTokens(ctx context.Context, apiKey string, tokens int64) error {
	if tokens <= 0 {
		return nil
	}
	now := r.now().UTC()

	pipe := r.client.TxPipeline()

	dailyKey := fmt.Sprintf("usage:tokens:daily:{%s}:%s", apiKey, now.Format("2006-01-02"))
	pipe.IncrBy(ctx, dailyKey, tokens)
	pipe.Expire(ctx, dailyKey, dailyTTL)

	pipe.IncrBy(ctx, fmt.Sprintf("usage:tokens:total:{%s}", apiKey), tokens)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record %d tokens for %s: %w", tokens, apiKey, err)
	}
	return nil
}

// Report is a point-in-time view of one key's counters.
type Report struct {
	APIKey      string
	MinuteCount int64
	HourCount   int64
	DayCount    int64
	TotalCount  int64
	DayTokens   int64
	TotalTokens int64
	GeneratedAt time.Time
}

// Report reads the current-period counters for apiKey. Missing keys
// read as zero.
func (r *Recorder) Report(ctx context.Context, apiKey string) (Report, error) {
	now := r.now().UTC()

	keys := []string{
		fmt.Sprintf("usage:minute:{%s}:%d", apiKey, now.Unix()/60),
		fmt.Sprintf("usage:hour:{%s}:%s", apiKey, now.Format("2006-01-02:15")),
		fmt.Sprintf("usage:daily:{%s}:%s", apiKey, now.Format("2006-01-02")),
		fmt.Sprintf("usage:total:{%s}", apiKey),
		fmt.Sprintf("usage:tokens:daily:{%s}:%s", apiKey, now.Format("2006-01-02")),
		fmt.Sprintf("usage:tokens:total:{%s}", apiKey),
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Report{}, fmt.Errorf("read usage for %s: %w", apiKey, err)
	}

	counts := make([]int64, len(values))
	for i, v := range values {
		counts[i] = parseCount(v)
	}

	return Report{
		APIKey:      apiKey,
		MinuteCount: counts[0],
		HourCount:   counts[1],
		DayCount:    counts[2],
		TotalCount:  counts[3],
		DayTokens:   counts[4],
		TotalTokens: counts[5],
		GeneratedAt: now,
	}, nil
}

func parseCount(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}
