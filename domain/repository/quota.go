package repository

import (
	"context"

	"shorts-player/domain/model"
)

// IQuotaTracker accumulates external API cost per UTC day.
type IQuotaTracker interface {
	RecordCost(ctx context.Context, amount int64) (model.QuotaUsage, error)
	UsageForToday(ctx context.Context) (model.QuotaUsage, error)
}

// IRefreshNotifier is told about every committed generation.
type IRefreshNotifier interface {
	NotifyRefreshed(ctx context.Context, result *model.RefreshResult) error
}
