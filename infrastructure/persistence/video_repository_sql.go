package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shorts-player/domain/model"

	"github.com/google/uuid"
)

const videoColumns = `video_id, title, description, category, published_at, created_at, generation`

// sqlDialect holds the vendor specific statements of VideoRepositorySQL.
type sqlDialect struct {
	name      string
	latest    string
	count     string
	pick      string
	deleteAll string
	insert    string
	// readTx is used for the count-then-offset read.
	readTx *sql.TxOptions
}

// VideoRepositorySQL implements the video store on database/sql. A refresh
// swaps contents with delete+insert inside one transaction, so readers see
// either the old or the new generation.
type VideoRepositorySQL struct {
	db      *sql.DB
	dialect sqlDialect
	now     func() time.Time
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*model.VideoRecord, error) {
	var (
		v           model.VideoRecord
		category    sql.NullString
		publishedAt sql.NullTime
	)
	if err := row.Scan(&v.VideoID, &v.Title, &v.Description, &category, &publishedAt, &v.CreatedAt, &v.Generation); err != nil {
		return nil, err
	}
	if category.Valid {
		v.Category = category.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		v.PublishedAt = &t
	}
	return &v, nil
}

func (r *VideoRepositorySQL) Latest(ctx context.Context) (*model.VideoRecord, error) {
	v, err := scanVideo(r.db.QueryRowContext(ctx, r.dialect.latest))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest video (%s): %w", r.dialect.name, err)
	}
	return v, nil
}

func (r *VideoRepositorySQL) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.count).Scan(&n); err != nil {
		return 0, fmt.Errorf("count videos (%s): %w", r.dialect.name, err)
	}
	return n, nil
}

func (r *VideoRepositorySQL) PickRandom(ctx context.Context, offset func(count int64) int64) (*model.VideoRecord, error) {
	tx, err := r.db.BeginTx(ctx, r.dialect.readTx)
	if err != nil {
		return nil, fmt.Errorf("begin read (%s): %w", r.dialect.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int64
	if err := tx.QueryRowContext(ctx, r.dialect.count).Scan(&n); err != nil {
		return nil, fmt.Errorf("count videos (%s): %w", r.dialect.name, err)
	}
	if n == 0 {
		return nil, tx.Commit()
	}
	v, err := scanVideo(tx.QueryRowContext(ctx, r.dialect.pick, clampOffset(offset(n), n)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tx.Commit()
	}
	if err != nil {
		return nil, fmt.Errorf("pick video (%s): %w", r.dialect.name, err)
	}
	return v, tx.Commit()
}

func (r *VideoRepositorySQL) ReplaceAll(ctx context.Context, records []model.VideoRecord) (generation string, err error) {
	if len(records) == 0 {
		return "", fmt.Errorf("replace with empty generation")
	}
	generation = uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, r.dialect.deleteAll); err != nil {
		return "", fmt.Errorf("clear videos (%s): %w", r.dialect.name, err)
	}
	stmt, err := tx.PrepareContext(ctx, r.dialect.insert)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := range records {
		v := records[i]
		var category interface{}
		if v.Category != "" {
			category = v.Category
		}
		var publishedAt interface{}
		if v.PublishedAt != nil {
			publishedAt = v.PublishedAt.UTC()
		}
		if _, err = stmt.ExecContext(ctx, v.VideoID, v.Title, v.Description, category, publishedAt, v.CreatedAt.UTC(), generation); err != nil {
			return "", fmt.Errorf("insert video %s (%s): %w", v.VideoID, r.dialect.name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return generation, nil
}

func (r *VideoRepositorySQL) Stats(ctx context.Context) (*model.StoreStats, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.StoreStats{Driver: r.dialect.name, Records: n, Collections: 1, Timestamp: r.now().UTC()}
	latest, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		stats.Generation = latest.Generation
	}
	return stats, nil
}
