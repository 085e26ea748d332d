package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"shorts-player/infrastructure/logger"
)

// EnsureVideoSchema creates the video_records table on PostgreSQL if not exists
func EnsureVideoSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS video_records (
        video_id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        category TEXT NULL,
        published_at TIMESTAMPTZ NULL,
        created_at TIMESTAMPTZ NOT NULL,
        generation TEXT NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_records table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_video_records_created_at ON video_records(created_at DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_video_records_created_at")
	}
	return nil
}

var postgresDialect = sqlDialect{
	name:      "postgres",
	latest:    `SELECT ` + videoColumns + ` FROM video_records ORDER BY created_at DESC LIMIT 1`,
	count:     `SELECT COUNT(1) FROM video_records`,
	pick:      `SELECT ` + videoColumns + ` FROM video_records ORDER BY video_id LIMIT 1 OFFSET $1`,
	deleteAll: `DELETE FROM video_records`,
	insert:    `INSERT INTO video_records(` + videoColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
	readTx:    &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
}

func NewVideoRepository(db *sql.DB) *VideoRepositorySQL {
	return &VideoRepositorySQL{db: db, dialect: postgresDialect, now: time.Now}
}
