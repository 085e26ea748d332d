package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/monitoring"

	"github.com/redis/go-redis/v9"
)

const (
	quotaKeyPrefix = "youtube:quota:"
	// Keys outlive their day so yesterday's total can still be inspected.
	quotaKeyTTL = 48 * time.Hour
)

// QuotaCache is a quota tracker backed by Redis, shared by every instance
// pointing at the same server.
type QuotaCache struct {
	client    *redis.Client
	limit     int64
	warnRatio float64
	now       func() time.Time
}

func NewQuotaCache(client *redis.Client, dailyLimit int64, opts ...monitoring.QuotaOption) *QuotaCache {
	ratio, now := monitoring.ResolveOptions(opts...)
	return &QuotaCache{client: client, limit: dailyLimit, warnRatio: ratio, now: now}
}

func quotaKey(date string) string {
	return quotaKeyPrefix + date
}

func (q *QuotaCache) RecordCost(ctx context.Context, amount int64) (model.QuotaUsage, error) {
	today := monitoring.DateKey(q.now())
	key := quotaKey(today)

	pipe := q.client.TxPipeline()
	incr := pipe.IncrBy(ctx, key, amount)
	pipe.Expire(ctx, key, quotaKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.QuotaUsage{}, fmt.Errorf("record quota cost: %w", err)
	}

	usage := model.QuotaUsage{Date: today, Used: incr.Val(), Limit: q.limit}
	monitoring.ReportUsage(usage, q.warnRatio)
	return usage, nil
}

func (q *QuotaCache) UsageForToday(ctx context.Context) (model.QuotaUsage, error) {
	today := monitoring.DateKey(q.now())
	used, err := q.client.Get(ctx, quotaKey(today)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return model.QuotaUsage{}, fmt.Errorf("read quota usage: %w", err)
	}
	return model.QuotaUsage{Date: today, Used: used, Limit: q.limit}, nil
}
