package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/events"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
)

// enqueueDomainEvent 将领域事件序列化后写入 Outbox，必须与业务写入同事务。
func enqueueDomainEvent(ctx context.Context, sess txmanager.Session, outbox WebhookOutboxWriter, event *events.DomainEvent) error {
	payload, err := events.MarshalPayload(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	headers, err := events.MarshalAttributes(events.BuildAttributes(event, events.SchemaVersionV1, events.TraceIDFromContext(ctx)))
	if err != nil {
		return fmt.Errorf("marshal event attributes: %w", err)
	}

	msg := repositories.OutboxMessage{
		EventID:       event.EventID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     events.FormatEventType(event.Kind),
		Payload:       payload,
		Headers:       headers,
		AvailableAt:   time.Now().UTC(),
	}
	if err := outbox.Enqueue(ctx, sess, msg); err != nil {
		return fmt.Errorf("enqueue outbox: %w", err)
	}
	return nil
}
