package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxMessage 描述需要写入 outbox_events 的事件数据。
type OutboxMessage struct {
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	Headers       []byte
	AvailableAt   time.Time
}

// OutboxEvent 表示从数据库读取的待发布事件。
type OutboxEvent struct {
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	Payload          []byte
	Headers          []byte
	OccurredAt       time.Time
	AvailableAt      time.Time
	PublishedAt      *time.Time
	DeliveryAttempts int32
	LastError        *string
}

// OutboxRepository 提供写入 Outbox 表的能力，确保与 TxManager Session 协作。
type OutboxRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewOutboxRepository 构造 Repository。
func NewOutboxRepository(pool *pgxpool.Pool, logger log.Logger) *OutboxRepository {
	return &OutboxRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Enqueue 在指定事务内插入 Outbox 事件。
func (r *OutboxRepository) Enqueue(ctx context.Context, sess txmanager.Session, msg OutboxMessage) error {
	// 统一 AvailableAt 为 UTC，缺省时自动填当前时间，方便调度器排序。
	availableAt := msg.AvailableAt.UTC()
	if availableAt.IsZero() {
		availableAt = time.Now().UTC()
	}

	query := `
		INSERT INTO review.outbox_events (
			event_id, aggregate_type, aggregate_id, event_type,
			payload, headers, available_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	if _, err := querierFor(r.pool, sess).Exec(ctx, query,
		msg.EventID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Headers,
		availableAt,
	); err != nil {
		r.log.WithContext(ctx).Errorf("insert outbox event failed: event_id=%s err=%v", msg.EventID, err)
		return fmt.Errorf("insert outbox event: %w", err)
	}

	r.log.WithContext(ctx).Debugf("outbox event enqueued: aggregate=%s id=%s", msg.AggregateType, msg.AggregateID)
	return nil
}

// ClaimPending 认领一批待发布事件并累加投递次数。
// FOR UPDATE SKIP LOCKED 允许多实例并发发布而互不阻塞。
func (r *OutboxRepository) ClaimPending(ctx context.Context, availableBefore time.Time, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		UPDATE review.outbox_events
		SET delivery_attempts = delivery_attempts + 1
		WHERE event_id IN (
			SELECT event_id
			FROM review.outbox_events
			WHERE published_at IS NULL AND available_at <= $1
			ORDER BY available_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING event_id, aggregate_type, aggregate_id, event_type,
			payload, headers, occurred_at, available_at, published_at,
			delivery_attempts, last_error
	`

	rows, err := r.pool.Query(ctx, query, availableBefore.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(
			&ev.EventID, &ev.AggregateType, &ev.AggregateID, &ev.EventType,
			&ev.Payload, &ev.Headers, &ev.OccurredAt, &ev.AvailableAt, &ev.PublishedAt,
			&ev.DeliveryAttempts, &ev.LastError,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return events, nil
}

// MarkPublished 更新事件状态为已发布。
func (r *OutboxRepository) MarkPublished(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, publishedAt time.Time) error {
	if _, err := querierFor(r.pool, sess).Exec(ctx, `
		UPDATE review.outbox_events
		SET published_at = $2, last_error = NULL
		WHERE event_id = $1
	`, eventID, publishedAt.UTC()); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// Reschedule 将事件重新安排在未来时间发布，并记录错误信息。
func (r *OutboxRepository) Reschedule(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, nextAvailable time.Time, lastErr string) error {
	var errText *string
	if lastErr != "" {
		errText = &lastErr
	}
	if _, err := querierFor(r.pool, sess).Exec(ctx, `
		UPDATE review.outbox_events
		SET available_at = $2, last_error = $3
		WHERE event_id = $1
	`, eventID, nextAvailable.UTC(), errText); err != nil {
		return fmt.Errorf("reschedule outbox event: %w", err)
	}
	return nil
}
