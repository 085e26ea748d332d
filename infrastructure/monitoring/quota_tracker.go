package monitoring

import (
	"context"
	"math"
	"sync"
	"time"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"
	"shorts-player/infrastructure/metrics"
)

const DefaultWarnRatio = 0.8

// QuotaTracker keeps an in-process YouTube quota counter keyed by UTC date.
// Counts for earlier days are dropped on the first record of a new day.
type QuotaTracker struct {
	mu        sync.Mutex
	counts    map[string]int64
	limit     int64
	warnRatio float64
	now       func() time.Time
}

// QuotaOption customises a tracker.
type QuotaOption func(*quotaOptions)

type quotaOptions struct {
	warnRatio float64
	now       func() time.Time
}

// WithWarnRatio sets the fraction of the daily limit above which usage is reported as a warning.
func WithWarnRatio(ratio float64) QuotaOption {
	return func(o *quotaOptions) {
		if ratio > 0 && ratio <= 1 {
			o.warnRatio = ratio
		}
	}
}

// WithClock overrides the clock used to derive the UTC date key.
func WithClock(now func() time.Time) QuotaOption {
	return func(o *quotaOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// ResolveOptions applies opts over the defaults. Shared with other tracker backends.
func ResolveOptions(opts ...QuotaOption) (float64, func() time.Time) {
	o := quotaOptions{warnRatio: DefaultWarnRatio, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o.warnRatio, o.now
}

func NewQuotaTracker(dailyLimit int64, opts ...QuotaOption) *QuotaTracker {
	ratio, now := ResolveOptions(opts...)
	return &QuotaTracker{
		counts:    make(map[string]int64),
		limit:     dailyLimit,
		warnRatio: ratio,
		now:       now,
	}
}

// DateKey formats t as the UTC calendar date used for quota buckets.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (q *QuotaTracker) RecordCost(_ context.Context, amount int64) (model.QuotaUsage, error) {
	q.mu.Lock()
	today := DateKey(q.now())
	for day := range q.counts {
		if day != today {
			delete(q.counts, day)
		}
	}
	q.counts[today] += amount
	usage := model.QuotaUsage{Date: today, Used: q.counts[today], Limit: q.limit}
	q.mu.Unlock()

	ReportUsage(usage, q.warnRatio)
	return usage, nil
}

func (q *QuotaTracker) UsageForToday(_ context.Context) (model.QuotaUsage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	today := DateKey(q.now())
	return model.QuotaUsage{Date: today, Used: q.counts[today], Limit: q.limit}, nil
}

// ReportUsage logs the usage, updates the gauge and raises a warning above warnRatio.
func ReportUsage(usage model.QuotaUsage, warnRatio float64) {
	metrics.QuotaUsed.Set(float64(usage.Used))
	logger.GetLogger().WithFields(map[string]interface{}{
		"date":           usage.Date,
		"quotaUsed":      usage.Used,
		"quotaRemaining": usage.Remaining(),
	}).Info("YouTube API usage")

	if usage.OverThreshold(warnRatio) {
		metrics.QuotaWarnings.Inc()
		logger.GetLogger().WithFields(map[string]interface{}{
			"date":      usage.Date,
			"quotaUsed": usage.Used,
			"percent":   math.Round(usage.Ratio() * 100),
		}).Warn("YouTube API quota usage above warning threshold")
	}
}
