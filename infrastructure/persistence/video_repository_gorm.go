package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shorts-player/domain/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoRepositoryGorm is the MySQL flavour of the video store.
type VideoRepositoryGorm struct {
	db  *gorm.DB
	now func() time.Time
}

func NewVideoRepositoryGorm(db *gorm.DB) *VideoRepositoryGorm {
	return &VideoRepositoryGorm{db: db, now: time.Now}
}

func EnsureVideoSchemaGorm(db *gorm.DB) error {
	return db.AutoMigrate(&model.VideoRecord{})
}

func (r *VideoRepositoryGorm) Latest(ctx context.Context) (*model.VideoRecord, error) {
	var v model.VideoRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest video (mysql): %w", err)
	}
	return &v, nil
}

func (r *VideoRepositoryGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.VideoRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count videos (mysql): %w", err)
	}
	return n, nil
}

func (r *VideoRepositoryGorm) PickRandom(ctx context.Context, offset func(count int64) int64) (*model.VideoRecord, error) {
	var picked *model.VideoRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.VideoRecord{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		var v model.VideoRecord
		err := tx.Order("video_id").Offset(int(clampOffset(offset(n), n))).Limit(1).Take(&v).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		picked = &v
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("pick video (mysql): %w", err)
	}
	return picked, nil
}

func (r *VideoRepositoryGorm) ReplaceAll(ctx context.Context, records []model.VideoRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("replace with empty generation")
	}
	generation := uuid.NewString()
	rows := make([]model.VideoRecord, len(records))
	for i := range records {
		rows[i] = records[i]
		rows[i].Generation = generation
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.VideoRecord{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return "", fmt.Errorf("replace videos (mysql): %w", err)
	}
	return generation, nil
}

func (r *VideoRepositoryGorm) Stats(ctx context.Context) (*model.StoreStats, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.StoreStats{Driver: "mysql", Records: n, Collections: 1, Timestamp: r.now().UTC()}
	latest, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		stats.Generation = latest.Generation
	}
	return stats, nil
}
