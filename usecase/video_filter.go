package usecase

import (
	"context"
	"strings"
	"time"

	"shorts-player/domain/model"
	"shorts-player/domain/repository"
	"shorts-player/infrastructure/logger"
)

// VideoFilter narrows a candidate set. Filters never add records.
type VideoFilter interface {
	Name() string
	Apply(ctx context.Context, videos []model.VideoRecord) ([]model.VideoRecord, error)
}

// DateFilter keeps videos published at or before Cutoff. Videos without a
// publish time are dropped.
type DateFilter struct {
	Cutoff time.Time
}

func (f DateFilter) Name() string { return "date" }

func (f DateFilter) Apply(_ context.Context, videos []model.VideoRecord) ([]model.VideoRecord, error) {
	kept := videos[:0:0]
	for _, v := range videos {
		if v.PublishedAt != nil && !v.PublishedAt.After(f.Cutoff) {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

// KeywordFilter keeps videos whose title or description contains at least one
// keyword, case-insensitively. An empty keyword list keeps everything.
type KeywordFilter struct {
	Keywords []string
}

func NewKeywordFilter(keywords []string) KeywordFilter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return KeywordFilter{Keywords: lowered}
}

func (f KeywordFilter) Name() string { return "keyword" }

func (f KeywordFilter) Apply(_ context.Context, videos []model.VideoRecord) ([]model.VideoRecord, error) {
	if len(f.Keywords) == 0 {
		return videos, nil
	}
	kept := videos[:0:0]
	for _, v := range videos {
		if f.matches(v) {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

func (f KeywordFilter) matches(v model.VideoRecord) bool {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(v.Description)
	for _, k := range f.Keywords {
		if strings.Contains(title, k) || strings.Contains(desc, k) {
			return true
		}
	}
	return false
}

// availabilityFilter confirms each candidate through videos.list in batches.
// IDs missing from the answer are dropped.
type availabilityFilter struct {
	u *VideoUseCase
}

func (f availabilityFilter) Name() string { return "availability" }

func (f availabilityFilter) Apply(ctx context.Context, videos []model.VideoRecord) ([]model.VideoRecord, error) {
	available := make(map[string]bool, len(videos))
	for start := 0; start < len(videos); start += repository.MaxVideoIDsPerCall {
		end := start + repository.MaxVideoIDsPerCall
		if end > len(videos) {
			end = len(videos)
		}
		ids := make([]string, 0, end-start)
		for _, v := range videos[start:end] {
			ids = append(ids, v.VideoID)
		}
		statuses, err := f.u.videoStatuses(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, s := range statuses {
			if s.Available() {
				available[s.VideoID] = true
			}
		}
	}

	kept := videos[:0:0]
	for _, v := range videos {
		if available[v.VideoID] {
			kept = append(kept, v)
			continue
		}
		logger.GetLogger().WithField("videoId", v.VideoID).Debug("Dropping unavailable video")
	}
	return kept, nil
}
