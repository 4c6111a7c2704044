package outbox

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel"
)

// ProvidePublisherTask 将 Outbox 仓储与 Pub/Sub 发布器包装为发布任务。
// 未配置发布目标时返回 nil，应用据此跳过该后台任务。
func ProvidePublisherTask(
	repo *repositories.OutboxRepository,
	publisher gcpubsub.Publisher,
	pubCfg gcpubsub.Config,
	cfg *conf.Outbox,
	logger log.Logger,
) *PublisherTask {
	if repo == nil || logger == nil {
		return nil
	}
	if publisher == nil || pubCfg.TopicID == "" {
		return nil
	}

	taskCfg := Config{}
	if cfg != nil {
		taskCfg = Config{
			BatchSize:      int(cfg.BatchSize),
			TickInterval:   time.Duration(cfg.TickIntervalSeconds) * time.Second,
			InitialBackoff: time.Duration(cfg.InitialBackoffSeconds) * time.Second,
			MaxBackoff:     time.Duration(cfg.MaxBackoffSeconds) * time.Second,
			MaxAttempts:    cfg.MaxAttempts,
			PublishTimeout: time.Duration(cfg.PublishTimeoutSeconds) * time.Second,
			Workers:        int(cfg.Workers),
		}
	}

	meter := otel.GetMeterProvider().Meter("lingo-services-review.outbox")
	return NewPublisherTask(repo, publisher, taskCfg, logger, meter)
}
