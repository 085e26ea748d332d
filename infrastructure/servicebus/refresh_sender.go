package servicebus

import (
	"context"
	"encoding/json"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// RefreshSender puts a message on a Service Bus queue for every committed generation.
type RefreshSender struct {
	queue     string
	newSender func(queue string) (messageSender, error)
}

func NewRefreshSender(client *azservicebus.Client, queue string) *RefreshSender {
	return &RefreshSender{
		queue: queue,
		newSender: func(queue string) (messageSender, error) {
			sender, err := client.NewSender(queue, nil)
			if err != nil {
				return nil, err
			}
			return sender, nil
		},
	}
}

func (s *RefreshSender) NotifyRefreshed(ctx context.Context, result *model.RefreshResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	sender, err := s.newSender(s.queue)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.WithoutCancel(ctx)); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}()

	contentType := "application/json"
	subject := "video-cache-refreshed"
	msg := &azservicebus.Message{
		Body:                  body,
		ContentType:           &contentType,
		Subject:               &subject,
		ApplicationProperties: map[string]interface{}{"generation": result.Generation},
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
