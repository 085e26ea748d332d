package model

import "time"

// VideoRecord is one cached video, written by a refresh generation.
type VideoRecord struct {
	VideoID     string     `json:"videoId"               bson:"videoId"               gorm:"column:video_id;primaryKey;size:64"`
	Title       string     `json:"title"                 bson:"title"                 gorm:"column:title"`
	Description string     `json:"description"           bson:"description"           gorm:"column:description;type:text"`
	Category    string     `json:"category,omitempty"    bson:"category,omitempty"    gorm:"column:category"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" bson:"publishedAt,omitempty" gorm:"column:published_at"`
	CreatedAt   time.Time  `json:"createdAt"             bson:"createdAt"             gorm:"column:created_at;index"`
	Generation  string     `json:"-"                     bson:"generation"            gorm:"column:generation;size:64"`
}

// TableName pins the gorm table name.
func (VideoRecord) TableName() string {
	return "video_records"
}

// RefreshResult describes the outcome of one refresh execution.
type RefreshResult struct {
	Refreshed  bool      `json:"refreshed"`
	Reason     string    `json:"reason"`
	Generation string    `json:"generation,omitempty"`
	Count      int       `json:"count"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

const (
	RefreshReasonFresh       = "fresh"
	RefreshReasonEmptyResult = "empty-result"
	RefreshReasonCommitted   = "committed"
)

// StoreStats is a snapshot of the video store used by the monitoring endpoint.
type StoreStats struct {
	Driver      string    `json:"driver"`
	Records     int64     `json:"records"`
	Generation  string    `json:"generation,omitempty"`
	Collections int64     `json:"collections,omitempty"`
	DataSize    float64   `json:"dataSize,omitempty"`
	StorageSize float64   `json:"storageSize,omitempty"`
	Indexes     int64     `json:"indexes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
