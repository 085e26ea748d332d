package repository

import (
	"context"

	"shorts-player/domain/model"
)

// IVideoRecord is the store holding the readable generation of cached videos.
type IVideoRecord interface {
	// Latest returns the most recently created record, or nil when the store is empty.
	Latest(ctx context.Context) (*model.VideoRecord, error)
	// Count returns the number of readable records.
	Count(ctx context.Context) (int64, error)
	// PickRandom resolves the readable generation once, counts it and returns the
	// record at offset(count) ordered by videoId. Returns nil when empty.
	PickRandom(ctx context.Context, offset func(count int64) int64) (*model.VideoRecord, error)
	// ReplaceAll atomically swaps the readable contents for records and returns the
	// new generation id.
	ReplaceAll(ctx context.Context, records []model.VideoRecord) (string, error)
	Stats(ctx context.Context) (*model.StoreStats, error)
}
