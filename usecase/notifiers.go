package usecase

import (
	"context"

	"shorts-player/domain/model"
	"shorts-player/domain/repository"

	"go.uber.org/multierr"
)

// Notifiers fans a refresh result out to every configured notifier.
type Notifiers []repository.IRefreshNotifier

func (n Notifiers) NotifyRefreshed(ctx context.Context, result *model.RefreshResult) error {
	var errs error
	for _, notifier := range n {
		errs = multierr.Append(errs, notifier.NotifyRefreshed(ctx, result))
	}
	return errs
}
