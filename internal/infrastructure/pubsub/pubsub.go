// Package pubsub 将共享 Pub/Sub 组件接入 Wire 依赖图。
package pubsub

import (
	"context"

	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
)

// ToComponentConfig 将配置文件分区转换为 gcpubsub.Config。
func ToComponentConfig(cfg *conf.PubSub) gcpubsub.Config {
	if cfg == nil {
		return gcpubsub.Config{}
	}
	return gcpubsub.Config{
		ProjectID:        cfg.ProjectID,
		TopicID:          cfg.TopicID,
		SubscriptionID:   cfg.SubscriptionID,
		EmulatorEndpoint: cfg.EmulatorEndpoint,
	}
}

// NewPublisher 构造事件发布器。未配置 Pub/Sub 时返回 nil 发布器，
// 下游任务据此禁用发布路径而非启动失败。
func NewPublisher(ctx context.Context, cfg *conf.PubSub, logger log.Logger) (gcpubsub.Publisher, func(), error) {
	componentCfg := ToComponentConfig(cfg)
	if componentCfg.ProjectID == "" || componentCfg.TopicID == "" {
		log.NewHelper(logger).Warn("pubsub not configured, event publishing disabled")
		return nil, func() {}, nil
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, componentCfg, gcpubsub.Dependencies{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return gcpubsub.ProvidePublisher(component), cleanup, nil
}
