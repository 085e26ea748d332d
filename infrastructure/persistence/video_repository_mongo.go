package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	videoCollection      = "videos"
	generationCollection = "video_generations"
	activeGenerationID   = "active"
)

// generationPointer names the readable generation. Replacing this single
// document is the atomic step of a swap.
type generationPointer struct {
	ID          string    `bson:"_id"`
	Generation  string    `bson:"generation"`
	Previous    string    `bson:"previous,omitempty"`
	Count       int       `bson:"count"`
	CommittedAt time.Time `bson:"committedAt"`
}

// VideoRepositoryMongo stores generation-tagged video documents. Readers only
// see the generation named by the pointer; the previous generation is kept
// until the next swap so in-flight reads never hit a deleted set.
type VideoRepositoryMongo struct {
	db          *mongo.Database
	videos      *mongo.Collection
	generations *mongo.Collection
	now         func() time.Time
}

func NewVideoRepositoryMongo(db *mongo.Database) *VideoRepositoryMongo {
	return &VideoRepositoryMongo{
		db:          db,
		videos:      db.Collection(videoCollection),
		generations: db.Collection(generationCollection),
		now:         time.Now,
	}
}

// EnsureVideoIndexes creates the (generation, videoId) unique index and the
// createdAt index used by the staleness check.
func EnsureVideoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(videoCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "generation", Value: 1}, {Key: "videoId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("generation_videoId_unique"),
		},
		{
			Keys:    bson.D{{Key: "generation", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("generation_createdAt"),
		},
	})
	if err != nil {
		return fmt.Errorf("create video indexes: %w", err)
	}
	return nil
}

func (r *VideoRepositoryMongo) active(ctx context.Context) (*generationPointer, error) {
	var p generationPointer
	err := r.generations.FindOne(ctx, bson.D{{Key: "_id", Value: activeGenerationID}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active generation: %w", err)
	}
	return &p, nil
}

func generationFilter(generation string) bson.D {
	return bson.D{{Key: "generation", Value: generation}}
}

func (r *VideoRepositoryMongo) Latest(ctx context.Context) (*model.VideoRecord, error) {
	p, err := r.active(ctx)
	if err != nil || p == nil {
		return nil, err
	}
	var rec model.VideoRecord
	err = r.videos.FindOne(ctx, generationFilter(p.Generation),
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest video: %w", err)
	}
	return &rec, nil
}

func (r *VideoRepositoryMongo) Count(ctx context.Context) (int64, error) {
	p, err := r.active(ctx)
	if err != nil || p == nil {
		return 0, err
	}
	n, err := r.videos.CountDocuments(ctx, generationFilter(p.Generation))
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return n, nil
}

func (r *VideoRepositoryMongo) PickRandom(ctx context.Context, offset func(count int64) int64) (*model.VideoRecord, error) {
	p, err := r.active(ctx)
	if err != nil || p == nil {
		return nil, err
	}
	filter := generationFilter(p.Generation)
	n, err := r.videos.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	var rec model.VideoRecord
	err = r.videos.FindOne(ctx, filter,
		options.FindOne().
			SetSort(bson.D{{Key: "videoId", Value: 1}}).
			SetSkip(clampOffset(offset(n), n))).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick video: %w", err)
	}
	return &rec, nil
}

func (r *VideoRepositoryMongo) ReplaceAll(ctx context.Context, records []model.VideoRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("replace with empty generation")
	}
	generation := uuid.NewString()
	docs := make([]interface{}, 0, len(records))
	for i := range records {
		rec := records[i]
		rec.Generation = generation
		docs = append(docs, rec)
	}

	if _, err := r.videos.InsertMany(ctx, docs); err != nil {
		r.dropGeneration(ctx, generation)
		return "", fmt.Errorf("insert generation %s: %w", generation, err)
	}

	prev, err := r.active(ctx)
	if err != nil {
		r.dropGeneration(ctx, generation)
		return "", err
	}
	pointer := generationPointer{
		ID:          activeGenerationID,
		Generation:  generation,
		Count:       len(records),
		CommittedAt: r.now().UTC(),
	}
	keep := bson.A{generation}
	if prev != nil {
		pointer.Previous = prev.Generation
		keep = append(keep, prev.Generation)
	}

	if _, err := r.generations.ReplaceOne(ctx, bson.D{{Key: "_id", Value: activeGenerationID}}, pointer,
		options.Replace().SetUpsert(true)); err != nil {
		r.dropGeneration(ctx, generation)
		return "", fmt.Errorf("activate generation %s: %w", generation, err)
	}

	// The swap is committed; failing to prune only leaves garbage behind.
	res, err := r.videos.DeleteMany(ctx, bson.D{{Key: "generation", Value: bson.D{{Key: "$nin", Value: keep}}}})
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "generation": generation}).Warn("Failed pruning old video generations")
	} else {
		logger.GetLogger().WithFields(map[string]interface{}{"generation": generation, "pruned": res.DeletedCount}).Debug("Pruned old video generations")
	}
	return generation, nil
}

func (r *VideoRepositoryMongo) dropGeneration(ctx context.Context, generation string) {
	if _, err := r.videos.DeleteMany(context.WithoutCancel(ctx), generationFilter(generation)); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "generation": generation}).Error("Failed removing partial generation")
	}
}

type dbStats struct {
	Collections int64   `bson:"collections"`
	DataSize    float64 `bson:"dataSize"`
	StorageSize float64 `bson:"storageSize"`
	Indexes     int64   `bson:"indexes"`
}

func (r *VideoRepositoryMongo) Stats(ctx context.Context) (*model.StoreStats, error) {
	var raw dbStats
	if err := r.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&raw); err != nil {
		return nil, fmt.Errorf("dbStats: %w", err)
	}
	stats := &model.StoreStats{
		Driver:      "mongo",
		Collections: raw.Collections,
		DataSize:    raw.DataSize,
		StorageSize: raw.StorageSize,
		Indexes:     raw.Indexes,
		Timestamp:   r.now().UTC(),
	}
	p, err := r.active(ctx)
	if err != nil {
		return nil, err
	}
	if p != nil {
		stats.Generation = p.Generation
		if stats.Records, err = r.videos.CountDocuments(ctx, generationFilter(p.Generation)); err != nil {
			return nil, fmt.Errorf("count videos: %w", err)
		}
	}
	return stats, nil
}

// clampOffset keeps a caller supplied offset inside [0, n).
func clampOffset(off, n int64) int64 {
	if off < 0 {
		return 0
	}
	if off >= n {
		return n - 1
	}
	return off
}
