package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// RefreshPublisher announces committed generations on a Pub/Sub topic.
type RefreshPublisher struct {
	client    *pubsub.Client
	topicName string

	mu      sync.Mutex
	ensured bool
}

func NewRefreshPublisher(client *pubsub.Client, topicName string) *RefreshPublisher {
	return &RefreshPublisher{client: client, topicName: topicName}
}

func (p *RefreshPublisher) NotifyRefreshed(ctx context.Context, result *model.RefreshResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topicName)
	defer topic.Stop()
	if err := p.ensureTopic(ctx, topic); err != nil {
		return err
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"generation": result.Generation},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("publish refresh event: %w", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"serverId":   serverID,
		"topic":      p.topicName,
		"generation": result.Generation,
	}).Info("Refresh event published")
	return nil
}

// ensureTopic creates the topic on first use if it doesn't exist.
func (p *RefreshPublisher) ensureTopic(ctx context.Context, topic *pubsub.Topic) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured {
		return nil
	}
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topicName); err != nil {
			return err
		}
	}
	p.ensured = true
	return nil
}
