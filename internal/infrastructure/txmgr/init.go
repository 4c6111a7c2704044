package txmgr

import "github.com/google/wire"

// ProviderSet 暴露事务管理器构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewTxManager,
)
