// Package outbox 实现事务性 Outbox 的发布任务：周期性认领待投递
// 事件，并发发布到 Pub/Sub，失败按指数退避重新调度。
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultBatchSize      = 50
	defaultTickInterval   = time.Second
	defaultInitialBackoff = 2 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
	defaultMaxAttempts    = int32(10)
	defaultPublishTimeout = 10 * time.Second
	defaultWorkers        = 4
)

// Config 控制发布任务的批量、节奏与重试策略。
type Config struct {
	BatchSize      int
	TickInterval   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int32
	PublishTimeout time.Duration
	Workers        int
}

// sanitizeConfig 为零值字段填充缺省策略。
func sanitizeConfig(cfg Config) Config {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return cfg
}

// Store 抽象发布任务需要的 Outbox 持久化行为。
type Store interface {
	ClaimPending(ctx context.Context, availableBefore time.Time, limit int) ([]repositories.OutboxEvent, error)
	MarkPublished(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, publishedAt time.Time) error
	Reschedule(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, nextAvailable time.Time, lastErr string) error
}

// PublisherTask 作为 Kratos transport.Server 随应用启停。
type PublisherTask struct {
	store     Store
	publisher gcpubsub.Publisher
	cfg       Config
	clock     func() time.Time
	log       *log.Helper

	published metric.Int64Counter
	failed    metric.Int64Counter

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ transport.Server = (*PublisherTask)(nil)

// NewPublisherTask 构造 Outbox 发布任务。
func NewPublisherTask(store Store, publisher gcpubsub.Publisher, cfg Config, logger log.Logger, meter metric.Meter) *PublisherTask {
	t := &PublisherTask{
		store:     store,
		publisher: publisher,
		cfg:       sanitizeConfig(cfg),
		clock:     time.Now,
		log:       log.NewHelper(logger),
	}
	if meter != nil {
		t.published, _ = meter.Int64Counter("outbox_published_total")
		t.failed, _ = meter.Int64Counter("outbox_publish_failures_total")
	}
	return t
}

// Start 运行发布循环，阻塞直到上下文取消或 Stop 被调用。
func (t *PublisherTask) Start(ctx context.Context) error {
	if t.store == nil || t.publisher == nil {
		t.log.Info("outbox publisher disabled: store or publisher missing")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	t.log.Infof("outbox publisher started: batch=%d tick=%s workers=%d", t.cfg.BatchSize, t.cfg.TickInterval, t.cfg.Workers)
	for {
		select {
		case <-runCtx.Done():
			t.log.Info("outbox publisher stopped")
			return nil
		case <-ticker.C:
			if err := t.publishBatch(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				t.log.Errorf("outbox publish batch failed: %v", err)
			}
		}
	}
}

// Stop 终止发布循环。
func (t *PublisherTask) Stop(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return nil
}

// publishBatch 认领一批到期事件并用 worker 池并发发布。
// ClaimPending 使用 FOR UPDATE SKIP LOCKED，多实例下互不冲突。
func (t *PublisherTask) publishBatch(ctx context.Context) error {
	now := t.clock().UTC()
	events, err := t.store.ClaimPending(ctx, now, t.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	jobs := make(chan repositories.OutboxEvent)
	var wg sync.WaitGroup
	workers := t.cfg.Workers
	if workers > len(events) {
		workers = len(events)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range jobs {
				t.publishOne(ctx, event)
			}
		}()
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- event:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

// publishOne 发布单个事件：成功标记 published_at，失败按退避重排。
func (t *PublisherTask) publishOne(ctx context.Context, event repositories.OutboxEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, t.cfg.PublishTimeout)
	defer cancel()

	_, err := t.publisher.Publish(pubCtx, gcpubsub.Message{
		Data:       event.Payload,
		Attributes: decodeAttributes(event.Headers),
	})
	if err != nil {
		t.addCounter(ctx, t.failed)
		t.reschedule(ctx, event, err)
		return
	}

	if err := t.store.MarkPublished(ctx, nil, event.EventID, t.clock().UTC()); err != nil {
		// 标记失败意味着事件可能被重复发布；依赖消费侧以 event_id 去重。
		t.log.Errorf("mark outbox event published failed: event_id=%s err=%v", event.EventID, err)
		return
	}
	t.addCounter(ctx, t.published)
}

// reschedule 将失败事件安排到未来重试。超过最大尝试数后退避
// 固定在上限，事件保留在表中供人工排查，不做静默丢弃。
func (t *PublisherTask) reschedule(ctx context.Context, event repositories.OutboxEvent, cause error) {
	delay := t.backoffDuration(event.DeliveryAttempts)
	if t.cfg.MaxAttempts > 0 && event.DeliveryAttempts >= t.cfg.MaxAttempts {
		delay = t.cfg.MaxBackoff
		t.log.Errorf("outbox event exceeded max attempts: event_id=%s attempts=%d err=%v",
			event.EventID, event.DeliveryAttempts, cause)
	} else {
		t.log.Warnf("outbox publish failed, rescheduling: event_id=%s attempts=%d delay=%s err=%v",
			event.EventID, event.DeliveryAttempts, delay, cause)
	}

	next := t.clock().UTC().Add(delay)
	if err := t.store.Reschedule(ctx, nil, event.EventID, next, cause.Error()); err != nil {
		t.log.Errorf("reschedule outbox event failed: event_id=%s err=%v", event.EventID, err)
	}
}

// backoffDuration 计算第 attempts 次失败后的退避时长（指数增长，封顶）。
func (t *PublisherTask) backoffDuration(attempts int32) time.Duration {
	d := t.cfg.InitialBackoff
	for i := int32(0); i < attempts; i++ {
		d *= 2
		if d >= t.cfg.MaxBackoff {
			return t.cfg.MaxBackoff
		}
	}
	if d > t.cfg.MaxBackoff {
		return t.cfg.MaxBackoff
	}
	return d
}

func (t *PublisherTask) addCounter(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

// decodeAttributes 将存储的事件头还原为消息属性，解析失败时省略。
func decodeAttributes(headers []byte) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	var attrs map[string]string
	if err := json.Unmarshal(headers, &attrs); err != nil {
		return nil
	}
	return attrs
}
