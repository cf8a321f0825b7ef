package service

import (
	"context"

	"biomeai-be/internal/pkg/logger"
	"biomeai-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventRelay forwards events off the process. *nats.Publisher satisfies it.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	relay       EventRelay
	eventLogger logger.ILogger
}

// NewConsumerService drains the event topic into the event log and, when
// relay is non-nil, onto NATS.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	relay EventRelay,
	eventLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		relay:       relay,
		eventLogger: eventLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.eventLogger.Error("EVENTS", "Dropping undecodable event", map[string]interface{}{
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.eventLogger.Info("EVENTS", event.Type, event.Data)

	// Relay is best effort. A NATS outage must not stall the in-process bus.
	if cs.relay != nil {
		if err := cs.relay.Publish(ctx, event); err != nil {
			cs.eventLogger.Warn("EVENTS", "Failed to relay event to NATS", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
