package persistence

import (
	"database/sql"
	"fmt"
	"time"
)

// EnsureVideoSchemaMSSQL creates the video_records table on MSSQL if not exists
func EnsureVideoSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_records') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.video_records (
        video_id NVARCHAR(64) NOT NULL PRIMARY KEY,
        title NVARCHAR(512) NOT NULL,
        description NVARCHAR(MAX) NOT NULL,
        category NVARCHAR(128) NULL,
        published_at DATETIMEOFFSET NULL,
        created_at DATETIMEOFFSET NOT NULL,
        generation NVARCHAR(64) NOT NULL
    );
    CREATE INDEX idx_video_records_created_at ON dbo.video_records(created_at DESC);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_records table (mssql): %w", err)
	}
	return nil
}

// go-mssqldb rejects read-only transactions, so reads rely on the isolation level alone.
var mssqlDialect = sqlDialect{
	name:      "mssql",
	latest:    `SELECT TOP 1 ` + videoColumns + ` FROM dbo.video_records ORDER BY created_at DESC`,
	count:     `SELECT COUNT(1) FROM dbo.video_records`,
	pick:      `SELECT ` + videoColumns + ` FROM dbo.video_records ORDER BY video_id OFFSET @p1 ROWS FETCH NEXT 1 ROWS ONLY`,
	deleteAll: `DELETE FROM dbo.video_records`,
	insert:    `INSERT INTO dbo.video_records(` + videoColumns + `) VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7)`,
	readTx:    &sql.TxOptions{Isolation: sql.LevelRepeatableRead},
}

func NewVideoRepositoryMSSQL(db *sql.DB) *VideoRepositorySQL {
	return &VideoRepositorySQL{db: db, dialect: mssqlDialect, now: time.Now}
}
