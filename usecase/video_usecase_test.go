package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"shorts-player/domain/dto"
	"shorts-player/domain/model"
	"shorts-player/infrastructure/metrics"
	"shorts-player/infrastructure/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) (*dto.YouTubeSearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.YouTubeSearchResponse), args.Error(1)
}

func (m *MockYouTube) GetVideoStatuses(ctx context.Context, ids []string) ([]dto.YouTubeVideoStatus, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.YouTubeVideoStatus), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRefreshed(ctx context.Context, res *model.RefreshResult) error {
	return m.Called(ctx, res).Error(0)
}

// memStore is an in-memory video store swapping whole generations.
type memStore struct {
	mu         sync.Mutex
	records    []model.VideoRecord
	generation int
	replaceErr error
	replaces   int
}

func (s *memStore) Latest(context.Context) (*model.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.VideoRecord
	for i := range s.records {
		if latest == nil || s.records[i].CreatedAt.After(latest.CreatedAt) {
			v := s.records[i]
			latest = &v
		}
	}
	return latest, nil
}

func (s *memStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *memStore) PickRandom(_ context.Context, offset func(int64) int64) (*model.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return nil, nil
	}
	sorted := append([]model.VideoRecord(nil), s.records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VideoID < sorted[j].VideoID })
	v := sorted[offset(int64(len(sorted)))]
	return &v, nil
}

func (s *memStore) ReplaceAll(_ context.Context, records []model.VideoRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	if s.replaceErr != nil {
		return "", s.replaceErr
	}
	s.generation++
	gen := fmt.Sprintf("gen-%d", s.generation)
	s.records = make([]model.VideoRecord, len(records))
	for i := range records {
		s.records[i] = records[i]
		s.records[i].Generation = gen
	}
	return gen, nil
}

func (s *memStore) Stats(context.Context) (*model.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &model.StoreStats{Driver: "memory", Records: int64(len(s.records))}, nil
}

func (s *memStore) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.VideoID)
	}
	sort.Strings(out)
	return out
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func published(year int) time.Time {
	return time.Date(year, 1, 15, 0, 0, 0, 0, time.UTC)
}

func item(id, title string, year int) dto.YouTubeSearchItem {
	return dto.YouTubeSearchItem{VideoID: id, Title: title, Description: "desc " + id, PublishedAt: published(year)}
}

func newTestUseCase(store *memStore, yt *MockYouTube, quota *monitoring.QuotaTracker, policy RefreshPolicy) *VideoUseCase {
	if policy.Queries == nil {
		policy.Queries = []VideoQuery{{Term: "music", Category: "classic"}}
	}
	u := NewVideoUseCase(store, yt, quota, policy)
	u.now = func() time.Time { return testNow }
	u.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	u.offset = func(int64) int64 { return 0 }
	return u
}

func newTestQuota() *monitoring.QuotaTracker {
	return monitoring.NewQuotaTracker(10000, monitoring.WithClock(func() time.Time { return testNow }))
}

func TestRefreshIfStale_FreshStoreMakesNoExternalCalls(t *testing.T) {
	store := &memStore{records: []model.VideoRecord{{VideoID: "old", CreatedAt: testNow.Add(-time.Hour)}}}
	yt := new(MockYouTube)
	quota := newTestQuota()
	u := newTestUseCase(store, yt, quota, RefreshPolicy{CacheLifetime: 24 * time.Hour})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Refreshed)
	assert.Equal(t, model.RefreshReasonFresh, res.Reason)
	yt.AssertNotCalled(t, "SearchVideos", mock.Anything, mock.Anything)
	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(0), usage.Used)
}

func TestRefreshIfStale_ReplacesWholeGeneration(t *testing.T) {
	store := &memStore{records: []model.VideoRecord{{VideoID: "old", CreatedAt: testNow.Add(-48 * time.Hour)}}}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.MatchedBy(func(r *dto.YouTubeSearchRequest) bool {
		return r.Q == "music" && r.MaxResults == 50
	})).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{
		item("a", "A", 2009), item("b", "B", 2008), item("a", "A again", 2009),
	}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	assert.Equal(t, model.RefreshReasonCommitted, res.Reason)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "gen-1", res.Generation)
	assert.Equal(t, []string{"a", "b"}, store.ids())
	for _, r := range store.records {
		assert.Equal(t, "classic", r.Category)
		assert.False(t, r.CreatedAt.Before(res.StartedAt))
	}
	yt.AssertExpectations(t)
}

func TestRefreshIfStale_EmptyResultLeavesStoreUntouched(t *testing.T) {
	old := []model.VideoRecord{
		{VideoID: "x", Title: "X", CreatedAt: testNow.Add(-30 * time.Hour)},
		{VideoID: "y", Title: "Y", CreatedAt: testNow.Add(-30 * time.Hour)},
	}
	store := &memStore{records: append([]model.VideoRecord(nil), old...)}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})
	runs := metrics.RefreshRuns.WithLabelValues("empty-result")
	before := testutil.ToFloat64(runs)

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Refreshed)
	assert.Equal(t, model.RefreshReasonEmptyResult, res.Reason)
	assert.Equal(t, old, store.records)
	assert.Equal(t, 0, store.replaces)
	assert.Equal(t, before+1, testutil.ToFloat64(runs))
}

func TestRefreshIfStale_RetainedRecordsSatisfyEveryFilter(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{
		item("keep", "Classic Piano Live", 2009),
		item("too-new", "classic piano", 2015),
		item("off-topic", "Cooking show", 2008),
		item("private", "CLASSIC hits", 2007),
		item("blocked", "classic rock", 2007),
		item("missing", "classic jazz", 2007),
	}}, nil).Once()
	yt.On("GetVideoStatuses", mock.Anything, []string{"keep", "private", "blocked", "missing"}).Return([]dto.YouTubeVideoStatus{
		{VideoID: "keep", PrivacyStatus: "public", Embeddable: true, RegionRestriction: &dto.YouTubeRegionRestriction{}},
		{VideoID: "private", PrivacyStatus: "private", Embeddable: true},
		{VideoID: "blocked", PrivacyStatus: "public", Embeddable: true, RegionRestriction: &dto.YouTubeRegionRestriction{Blocked: []string{"DE"}}},
	}, nil).Once()

	cutoff := time.Date(2010, 12, 31, 23, 59, 59, 0, time.UTC)
	quota := newTestQuota()
	u := newTestUseCase(store, yt, quota, RefreshPolicy{
		Filters:           []VideoFilter{DateFilter{Cutoff: cutoff}, NewKeywordFilter([]string{"Classic"})},
		CheckAvailability: true,
	})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"keep"}, store.ids())
	yt.AssertExpectations(t)

	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(100+4), usage.Used)
}

func TestRefreshIfStale_AvailabilityBatchesOfFifty(t *testing.T) {
	items := make([]dto.YouTubeSearchItem, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, item(fmt.Sprintf("v%03d", i), "t", 2009))
	}
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: items}, nil).Once()

	var batches []int
	yt.On("GetVideoStatuses", mock.Anything, mock.Anything).Return(nil, nil).Run(func(args mock.Arguments) {
		batches = append(batches, len(args.Get(1).([]string)))
	})

	quota := newTestQuota()
	u := newTestUseCase(store, yt, quota, RefreshPolicy{CheckAvailability: true})
	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RefreshReasonEmptyResult, res.Reason)
	assert.Equal(t, []int{50, 50, 20}, batches)

	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(100+120), usage.Used)
}

func TestRefreshIfStale_FollowsPagesAndMergesQueries(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.MatchedBy(func(r *dto.YouTubeSearchRequest) bool {
		return r.Q == "music" && r.PageToken == ""
	})).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}, NextPageToken: "p2"}, nil).Once()
	yt.On("SearchVideos", mock.Anything, mock.MatchedBy(func(r *dto.YouTubeSearchRequest) bool {
		return r.Q == "music" && r.PageToken == "p2"
	})).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("b", "B", 2009)}, NextPageToken: "p3"}, nil).Once()
	yt.On("SearchVideos", mock.Anything, mock.MatchedBy(func(r *dto.YouTubeSearchRequest) bool {
		return r.Q == "jazz" && r.VideoDuration == "short"
	})).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("b", "B", 2009), item("c", "C", 2009)}}, nil).Once()

	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{Queries: []VideoQuery{
		{Term: "music", Category: "music", Pages: 2},
		{Term: "jazz", Category: "jazz", VideoDuration: "short"},
	}})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	categories := map[string]string{}
	for _, r := range store.records {
		categories[r.VideoID] = r.Category
	}
	assert.Equal(t, map[string]string{"a": "music", "b": "music", "c": "jazz"}, categories)
	yt.AssertExpectations(t)
}

func TestRefreshIfStale_MaxRecordsCapsGeneration(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{
		item("a", "A", 2009), item("b", "B", 2009), item("c", "C", 2009),
	}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{MaxRecords: 2})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"a", "b"}, store.ids())
}

func TestRefreshIfStale_SecondCallWithinWindowIsNoop(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	_, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RefreshReasonFresh, res.Reason)
	yt.AssertNumberOfCalls(t, "SearchVideos", 1)
}

func TestRefresh_ConcurrentCallersShareOneExecution(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	release := make(chan time.Time)
	yt.On("SearchVideos", mock.Anything, mock.Anything).
		WaitUntil(release).
		Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil)
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.RefreshIfStale(context.Background())
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	yt.AssertNumberOfCalls(t, "SearchVideos", 1)
	assert.Equal(t, 1, store.replaces)
}

func TestRefreshIfStale_FailsAfterThreeAttempts(t *testing.T) {
	old := []model.VideoRecord{{VideoID: "x", CreatedAt: testNow.Add(-48 * time.Hour)}}
	store := &memStore{records: append([]model.VideoRecord(nil), old...)}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(nil, errors.New("503 backend error"))
	quota := newTestQuota()
	u := newTestUseCase(store, yt, quota, RefreshPolicy{})

	var sleeps int
	u.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	res, err := u.RefreshIfStale(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	yt.AssertNumberOfCalls(t, "SearchVideos", 3)
	assert.Equal(t, 2, sleeps)
	assert.Equal(t, old, store.records)
	assert.Equal(t, 0, store.replaces)

	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(300), usage.Used)
}

func TestRefreshIfStale_RecoversOnRetry(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Twice()
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	yt.AssertNumberOfCalls(t, "SearchVideos", 3)
}

func TestRefreshIfStale_CancelledContextStopsRetrying(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})
	u.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := u.RefreshIfStale(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	yt.AssertNumberOfCalls(t, "SearchVideos", 1)
}

func TestRefreshIfStale_CommitFailure(t *testing.T) {
	store := &memStore{replaceErr: errors.New("write conflict")}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil)
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	_, err := u.RefreshIfStale(context.Background())
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Empty(t, store.records)
}

func TestRefreshIfStale_EnforcedQuotaRefusesCall(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	quota := newTestQuota()
	_, _ = quota.RecordCost(context.Background(), 9950)
	u := newTestUseCase(store, yt, quota, RefreshPolicy{DailyQuota: 10000, EnforceQuota: true})

	_, err := u.RefreshIfStale(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.NotErrorIs(t, err, ErrRefreshFailed)
	yt.AssertNotCalled(t, "SearchVideos", mock.Anything, mock.Anything)

	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(9950), usage.Used)
}

func TestRefreshIfStale_QuotaNotEnforcedByDefault(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil).Once()
	quota := newTestQuota()
	_, _ = quota.RecordCost(context.Background(), 9950)
	u := newTestUseCase(store, yt, quota, RefreshPolicy{DailyQuota: 10000})

	_, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err)
	usage, _ := quota.UsageForToday(context.Background())
	assert.Equal(t, int64(10050), usage.Used)
}

func TestRefresh_ForceSkipsStalenessCheck(t *testing.T) {
	store := &memStore{records: []model.VideoRecord{{VideoID: "old", CreatedAt: testNow}}}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("new", "N", 2009)}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	res, err := u.Refresh(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	assert.Equal(t, []string{"new"}, store.ids())
}

func TestRefresh_NotifiesAfterCommit(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{item("a", "A", 2009)}}, nil).Once()
	notifier := new(MockNotifier)
	notifier.On("NotifyRefreshed", mock.Anything, mock.MatchedBy(func(r *model.RefreshResult) bool {
		return r.Refreshed && r.Count == 1 && r.Generation == "gen-1"
	})).Return(errors.New("topic not found")).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{}).WithNotifier(notifier)

	res, err := u.RefreshIfStale(context.Background())
	require.NoError(t, err, "notification failures do not fail the refresh")
	assert.True(t, res.Refreshed)
	notifier.AssertExpectations(t)
}

func TestRandomVideo_EmptyStoreRefreshesThenServes(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{Items: []dto.YouTubeSearchItem{
		item("a", "A", 2009), item("b", "B", 2009),
	}}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})
	u.offset = func(n int64) int64 { return n - 1 }

	v, err := u.RandomVideo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", v.VideoID)
	assert.Equal(t, []string{"a", "b"}, store.ids())
}

func TestRandomVideo_EmptyAfterRefresh(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(&dto.YouTubeSearchResponse{}, nil).Once()
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	v, err := u.RandomVideo(context.Background())
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrNoVideos)
}

func TestRandomVideo_RefreshFailureIsReturned(t *testing.T) {
	store := &memStore{}
	yt := new(MockYouTube)
	yt.On("SearchVideos", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	_, err := u.RandomVideo(context.Background())
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestRandomVideo_PopulatedStoreSkipsRefresh(t *testing.T) {
	store := &memStore{records: []model.VideoRecord{
		{VideoID: "c", CreatedAt: testNow.Add(-72 * time.Hour)},
		{VideoID: "a", CreatedAt: testNow.Add(-72 * time.Hour)},
	}}
	yt := new(MockYouTube)
	u := newTestUseCase(store, yt, newTestQuota(), RefreshPolicy{})

	var gotCount int64
	u.offset = func(n int64) int64 {
		gotCount = n
		return 0
	}
	v, err := u.RandomVideo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", v.VideoID)
	assert.Equal(t, int64(2), gotCount)
	yt.AssertNotCalled(t, "SearchVideos", mock.Anything, mock.Anything)
}

func TestRandomVideo_DefaultOffsetStaysInRange(t *testing.T) {
	u := NewVideoUseCase(&memStore{}, new(MockYouTube), nil, RefreshPolicy{})
	for i := 0; i < 200; i++ {
		off := u.offset(3)
		assert.GreaterOrEqual(t, off, int64(0))
		assert.Less(t, off, int64(3))
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		wantErr bool
	}{
		{name: "lenient startup swallows refresh failure", strict: false, wantErr: false},
		{name: "strict startup returns refresh failure", strict: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := new(MockYouTube)
			yt.On("SearchVideos", mock.Anything, mock.Anything).Return(nil, errors.New("unreachable"))
			u := newTestUseCase(&memStore{}, yt, newTestQuota(), RefreshPolicy{StrictStartup: tt.strict})

			err := u.Initialize(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRefreshFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuotaUsage(t *testing.T) {
	quota := newTestQuota()
	_, _ = quota.RecordCost(context.Background(), 250)
	u := newTestUseCase(&memStore{}, new(MockYouTube), quota, RefreshPolicy{})

	usage, err := u.QuotaUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(250), usage.Used)
	assert.Equal(t, "2024-06-01", usage.Date)
}
