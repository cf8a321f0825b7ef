package service

import (
	"context"
	"fmt"

	"biomeai-be/internal/pkg/logger"
	"biomeai-be/pkg/events"
	pktNats "biomeai-be/pkg/nats"
)

// EventSubscriber registers durable handlers on the NATS stream.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// AuditService consumes relayed events back from NATS and writes a usage
// audit trail. It is the NATS-side counterpart of the consumer service.
type AuditService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewAuditService(subscriber EventSubscriber, log logger.ILogger) *AuditService {
	return &AuditService{subscriber: subscriber, logger: log}
}

func (s *AuditService) Start(ctx context.Context) error {
	subscriptions := []struct {
		eventType string
		durable   string
	}{
		{events.TypeReportIngested, "biomeai-audit-ingestion"},
		{events.TypeUsageRecorded, "biomeai-audit-usage"},
	}

	for _, sub := range subscriptions {
		if err := s.subscriber.Subscribe(ctx, sub.eventType, sub.durable, s.handle); err != nil {
			return fmt.Errorf("audit subscribe %s: %w", sub.eventType, err)
		}
	}
	return nil
}

func (s *AuditService) handle(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	s.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
