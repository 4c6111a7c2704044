package outbox

import "github.com/google/wire"

// ProviderSet 暴露 Outbox 发布任务构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvidePublisherTask,
)
