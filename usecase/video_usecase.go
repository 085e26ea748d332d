package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"shorts-player/domain/dto"
	"shorts-player/domain/model"
	"shorts-player/domain/repository"
	"shorts-player/infrastructure/logger"
	"shorts-player/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

var (
	ErrRefreshFailed  = errors.New("video refresh failed")
	ErrQuotaExhausted = errors.New("youtube daily quota exhausted")
	ErrNoVideos       = errors.New("no videos found")
)

const (
	refreshKey        = "refresh"
	maxSearchPageSize = 50
)

// IVideoUseCase defines the operations behind the random video API
type IVideoUseCase interface {
	RandomVideo(ctx context.Context) (*model.VideoRecord, error)
	RefreshIfStale(ctx context.Context) (*model.RefreshResult, error)
	Refresh(ctx context.Context, force bool) (*model.RefreshResult, error)
	Initialize(ctx context.Context) error
	QuotaUsage(ctx context.Context) (model.QuotaUsage, error)
	StoreStats(ctx context.Context) (*model.StoreStats, error)
}

// VideoQuery is one search issued per refresh. Category labels the records it yields.
type VideoQuery struct {
	Term            string
	Category        string
	VideoCategoryID string
	VideoDuration   string
	PublishedBefore string
	PublishedAfter  string
	RegionCode      string
	Pages           int
}

// RefreshPolicy configures staleness, searches, filters, retries and quota costs.
type RefreshPolicy struct {
	CacheLifetime     time.Duration
	Queries           []VideoQuery
	Filters           []VideoFilter
	CheckAvailability bool
	MaxRecords        int
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestTimeout    time.Duration
	StrictStartup     bool

	DailyQuota       int64
	EnforceQuota     bool
	SearchCost       int64
	DetailsCostPerID int64
}

func (p RefreshPolicy) withDefaults() RefreshPolicy {
	if p.CacheLifetime <= 0 {
		p.CacheLifetime = 24 * time.Hour
	}
	if p.RetryAttempts <= 0 {
		p.RetryAttempts = 3
	}
	if p.RetryDelay < 0 {
		p.RetryDelay = 0
	}
	if p.SearchCost <= 0 {
		p.SearchCost = 100
	}
	if p.DetailsCostPerID <= 0 {
		p.DetailsCostPerID = 1
	}
	return p
}

// VideoUseCase is the cache refresh engine plus random selection.
type VideoUseCase struct {
	store    repository.IVideoRecord
	youtube  repository.IYouTube
	quota    repository.IQuotaTracker
	notifier repository.IRefreshNotifier // optional
	policy   RefreshPolicy

	group  singleflight.Group
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	offset func(count int64) int64
}

func NewVideoUseCase(store repository.IVideoRecord, youtube repository.IYouTube, quota repository.IQuotaTracker, policy RefreshPolicy) *VideoUseCase {
	return &VideoUseCase{
		store:   store,
		youtube: youtube,
		quota:   quota,
		policy:  policy.withDefaults(),
		now:     time.Now,
		sleep:   sleepContext,
		offset:  func(count int64) int64 { return rand.Int63n(count) },
	}
}

// WithNotifier sets the receiver of committed generations (fluent)
func (u *VideoUseCase) WithNotifier(n repository.IRefreshNotifier) *VideoUseCase {
	u.notifier = n
	return u
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Initialize refreshes a stale or empty store at startup. Failures are logged
// and swallowed unless StrictStartup is set.
func (u *VideoUseCase) Initialize(ctx context.Context) error {
	res, err := u.RefreshIfStale(ctx)
	if err != nil {
		if u.policy.StrictStartup {
			return fmt.Errorf("initial refresh: %w", err)
		}
		logger.GetLogger().WithField("error", err).Error("Initial refresh failed; serving existing cache")
		return nil
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"refreshed": res.Refreshed,
		"reason":    res.Reason,
		"count":     res.Count,
	}).Info("Initial refresh complete")
	return nil
}

func (u *VideoUseCase) RefreshIfStale(ctx context.Context) (*model.RefreshResult, error) {
	return u.Refresh(ctx, false)
}

// Refresh runs one refresh through the single-flight guard. Concurrent callers
// share the in-flight execution and its outcome, forced or not. force skips
// the staleness check.
func (u *VideoUseCase) Refresh(ctx context.Context, force bool) (*model.RefreshResult, error) {
	ch := u.group.DoChan(refreshKey, func() (interface{}, error) {
		return u.refresh(context.WithoutCancel(ctx), force)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*model.RefreshResult), nil
	}
}

func (u *VideoUseCase) refresh(ctx context.Context, force bool) (_ *model.RefreshResult, err error) {
	started := u.now()
	res := &model.RefreshResult{StartedAt: started}
	defer func() {
		res.FinishedAt = u.now()
		outcome := "error"
		if err == nil {
			outcome = res.Reason
		}
		metrics.RefreshRuns.WithLabelValues(outcome).Inc()
		metrics.RefreshDuration.Observe(res.FinishedAt.Sub(started).Seconds())
	}()

	if !force {
		stale, err := u.isStale(ctx)
		if err != nil {
			return nil, err
		}
		if !stale {
			res.Reason = model.RefreshReasonFresh
			return res, nil
		}
	}

	log := logger.GetLogger().WithField("force", force)
	log.Info("Refreshing video cache")

	videos, err := u.collect(ctx)
	if err != nil {
		log.WithField("error", err).Error("Video search failed")
		return nil, err
	}
	log.WithField("candidates", len(videos)).Debug("Search complete")

	videos, err = u.filter(ctx, videos)
	if err != nil {
		log.WithField("error", err).Error("Video filtering failed")
		return nil, err
	}
	if limit := u.policy.MaxRecords; limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	if len(videos) == 0 {
		log.Warn("Refresh produced no videos; keeping existing cache")
		res.Reason = model.RefreshReasonEmptyResult
		return res, nil
	}

	createdAt := u.now().UTC()
	for i := range videos {
		videos[i].CreatedAt = createdAt
	}
	generation, err := u.store.ReplaceAll(ctx, videos)
	if err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrRefreshFailed, err)
	}
	res.Refreshed = true
	res.Reason = model.RefreshReasonCommitted
	res.Generation = generation
	res.Count = len(videos)
	metrics.CachedVideos.Set(float64(len(videos)))
	log.WithFields(map[string]interface{}{
		"generation": generation,
		"count":      len(videos),
	}).Info("Video cache refreshed")

	if u.notifier != nil {
		res.FinishedAt = u.now()
		if nerr := u.notifier.NotifyRefreshed(ctx, res); nerr != nil {
			log.WithField("error", nerr).Warn("Failed to publish refresh notification")
		}
	}
	return res, nil
}

func (u *VideoUseCase) isStale(ctx context.Context) (bool, error) {
	latest, err := u.store.Latest(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: staleness check: %v", ErrRefreshFailed, err)
	}
	if latest == nil {
		return true, nil
	}
	return u.now().Sub(latest.CreatedAt) > u.policy.CacheLifetime, nil
}

// collect runs every configured query and merges the hits, first occurrence wins.
func (u *VideoUseCase) collect(ctx context.Context) ([]model.VideoRecord, error) {
	seen := make(map[string]struct{})
	var out []model.VideoRecord
	for _, q := range u.policy.Queries {
		pages := q.Pages
		if pages <= 0 {
			pages = 1
		}
		req := &dto.YouTubeSearchRequest{
			Q:               q.Term,
			MaxResults:      maxSearchPageSize,
			VideoCategoryID: q.VideoCategoryID,
			VideoDuration:   q.VideoDuration,
			PublishedBefore: q.PublishedBefore,
			PublishedAfter:  q.PublishedAfter,
			RegionCode:      q.RegionCode,
		}
		for page := 0; page < pages; page++ {
			resp, err := u.search(ctx, req)
			if err != nil {
				return nil, err
			}
			for _, item := range resp.Items {
				if item.VideoID == "" {
					continue
				}
				if _, dup := seen[item.VideoID]; dup {
					continue
				}
				seen[item.VideoID] = struct{}{}
				out = append(out, toVideoRecord(item, q.Category))
			}
			if resp.NextPageToken == "" {
				break
			}
			req.PageToken = resp.NextPageToken
		}
	}
	return out, nil
}

func toVideoRecord(item dto.YouTubeSearchItem, category string) model.VideoRecord {
	v := model.VideoRecord{
		VideoID:     item.VideoID,
		Title:       item.Title,
		Description: item.Description,
		Category:    category,
	}
	if !item.PublishedAt.IsZero() {
		t := item.PublishedAt.UTC()
		v.PublishedAt = &t
	}
	return v
}

func (u *VideoUseCase) filter(ctx context.Context, videos []model.VideoRecord) ([]model.VideoRecord, error) {
	filters := u.policy.Filters
	if u.policy.CheckAvailability {
		filters = append(filters[:len(filters):len(filters)], availabilityFilter{u: u})
	}
	for _, f := range filters {
		if len(videos) == 0 {
			break
		}
		before := len(videos)
		var err error
		if videos, err = f.Apply(ctx, videos); err != nil {
			return nil, err
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"filter": f.Name(),
			"before": before,
			"after":  len(videos),
		}).Debug("Applied video filter")
	}
	return videos, nil
}

func (u *VideoUseCase) search(ctx context.Context, req *dto.YouTubeSearchRequest) (*dto.YouTubeSearchResponse, error) {
	var resp *dto.YouTubeSearchResponse
	err := u.callWithRetry(ctx, "search", u.policy.SearchCost, func(ctx context.Context) error {
		var err error
		resp, err = u.youtube.SearchVideos(ctx, req)
		return err
	})
	return resp, err
}

func (u *VideoUseCase) videoStatuses(ctx context.Context, ids []string) ([]dto.YouTubeVideoStatus, error) {
	var statuses []dto.YouTubeVideoStatus
	cost := u.policy.DetailsCostPerID * int64(len(ids))
	err := u.callWithRetry(ctx, "videos", cost, func(ctx context.Context) error {
		var err error
		statuses, err = u.youtube.GetVideoStatuses(ctx, ids)
		return err
	})
	return statuses, err
}

// callWithRetry makes up to RetryAttempts attempts of call, each bounded by
// RequestTimeout and each charged cost against the daily quota.
func (u *VideoUseCase) callWithRetry(ctx context.Context, endpoint string, cost int64, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= u.policy.RetryAttempts; attempt++ {
		if attempt > 1 {
			if err := u.sleep(ctx, u.policy.RetryDelay); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrRefreshFailed, endpoint, err)
			}
		}
		if err := u.chargeQuota(ctx, cost); err != nil {
			metrics.ExternalCalls.WithLabelValues(endpoint, "refused").Inc()
			return err
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if u.policy.RequestTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, u.policy.RequestTimeout)
		}
		lastErr = call(attemptCtx)
		cancel()
		if lastErr == nil {
			metrics.ExternalCalls.WithLabelValues(endpoint, "ok").Inc()
			return nil
		}
		metrics.ExternalCalls.WithLabelValues(endpoint, "error").Inc()
		logger.GetLogger().WithFields(map[string]interface{}{
			"endpoint": endpoint,
			"attempt":  attempt,
			"error":    lastErr,
		}).Warn("YouTube call failed")
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrRefreshFailed, endpoint, u.policy.RetryAttempts, lastErr)
}

// chargeQuota records cost for one attempt. With EnforceQuota, a call that
// would go beyond the daily quota is refused before it is made.
func (u *VideoUseCase) chargeQuota(ctx context.Context, cost int64) error {
	if u.quota == nil {
		return nil
	}
	if u.policy.EnforceQuota && u.policy.DailyQuota > 0 {
		usage, err := u.quota.UsageForToday(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to read quota usage")
		} else if usage.Used+cost > u.policy.DailyQuota {
			return fmt.Errorf("%w: used %d of %d, call costs %d", ErrQuotaExhausted, usage.Used, u.policy.DailyQuota, cost)
		}
	}
	if _, err := u.quota.RecordCost(ctx, cost); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to record quota cost")
	}
	return nil
}

// RandomVideo returns one record chosen uniformly by offset. An empty store
// triggers a synchronous refresh first.
func (u *VideoUseCase) RandomVideo(ctx context.Context) (*model.VideoRecord, error) {
	count, err := u.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	if count == 0 {
		logger.GetLogger().Info("Video cache empty; refreshing before selection")
		if _, err := u.RefreshIfStale(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Refresh on empty read failed")
			return nil, err
		}
	}

	v, err := u.store.PickRandom(ctx, u.offset)
	if err != nil {
		return nil, fmt.Errorf("pick random video: %w", err)
	}
	if v == nil {
		return nil, ErrNoVideos
	}
	return v, nil
}

func (u *VideoUseCase) QuotaUsage(ctx context.Context) (model.QuotaUsage, error) {
	if u.quota == nil {
		return model.QuotaUsage{Date: u.now().UTC().Format("2006-01-02"), Limit: u.policy.DailyQuota}, nil
	}
	return u.quota.UsageForToday(ctx)
}

func (u *VideoUseCase) StoreStats(ctx context.Context) (*model.StoreStats, error) {
	return u.store.Stats(ctx)
}
