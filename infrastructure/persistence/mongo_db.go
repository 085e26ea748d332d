package persistence

import (
	"context"
	"fmt"
	"time"

	"shorts-player/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb creates a MongoDB client. Connections are established lazily; use
// Ping to verify reachability. Command and pool events are logged.
func NewMongoDb(uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout).
		SetMonitor(commandMonitor()).
		SetPoolMonitor(poolMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

func commandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			logger.GetLogger().WithFields(map[string]interface{}{
				"database":  e.DatabaseName,
				"command":   e.CommandName,
				"requestId": e.RequestID,
			}).Debug("MongoDB command")
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			logger.GetLogger().WithFields(map[string]interface{}{
				"database": e.DatabaseName,
				"command":  e.CommandName,
				"duration": e.Duration,
				"error":    e.Failure,
			}).Error("MongoDB command failed")
		},
	}
}

func poolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionPoolCleared:
				logger.GetLogger().WithField("address", e.Address).Warn("MongoDB connection pool cleared; driver will reconnect")
			case event.ConnectionClosed:
				logger.GetLogger().WithFields(map[string]interface{}{
					"address": e.Address,
					"reason":  e.Reason,
				}).Debug("MongoDB connection closed")
			}
		},
	}
}
