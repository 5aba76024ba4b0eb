package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"github.com/xybotsu/coinpit"
)

// EventService publishes engine events on the notifications topic.
// The notification function on the other end delivers them to the
// account owner.
type EventService struct {
	client *Client
	logger coinpit.Logger
}

func NewEventService(client *Client, logger coinpit.Logger) *EventService {
	return &EventService{client, logger}
}

func (es *EventService) Publish(event *coinpit.Event) {
	es.publishOnNotificationsTopic(context.TODO(), event)
}

func (es *EventService) publishOnNotificationsTopic(
	ctx context.Context,
	event *coinpit.Event,
) {
	topicLogger := es.logger.WithField("topic", "notifications")

	messageData, err := json.Marshal(&notificationEvent{
		AccountID: event.AccountID,
		Payload:   event.Payload,
	})
	if err != nil {
		topicLogger.Errorf("could not marshal engine event: [%v]", err)
		return
	}

	es.publishOnTopic(
		ctx,
		es.client.notificationsTopic,
		messageData,
		topicLogger,
	)
}

func (es *EventService) publishOnTopic(
	ctx context.Context,
	topic *pubsub.Topic,
	messageData []byte,
	topicLogger coinpit.Logger,
) {
	result := topic.Publish(ctx, &pubsub.Message{
		Data: messageData,
	})

	go func() {
		id, err := result.Get(ctx)
		if err != nil {
			topicLogger.Errorf(
				"could not publish engine event: [%v]",
				err,
			)
			return
		}

		topicLogger.Infof("published engine event with ID: [%v]", id)
	}()
}

type notificationEvent struct {
	AccountID string
	Payload   string
}
