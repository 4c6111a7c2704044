package bunny

import (
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露服务商客户端构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvideClient,
)

// ProvideClient 从配置构造服务商客户端。配置缺失时仍返回可用实例，
// 由 Configured() 驱动各用例的降级路径。
func ProvideClient(cfg *conf.Provider, logger log.Logger) *Client {
	clientCfg := Config{}
	if cfg != nil {
		clientCfg = Config{
			LibraryID:      cfg.LibraryID,
			APIKey:         cfg.APIKey,
			APIBaseURL:     cfg.APIBaseURL,
			CDNHostname:    cfg.CDNHostname,
			UploadEndpoint: cfg.UploadEndpoint,
			Timeout:        cfg.Timeout(),
		}
	}
	return NewClient(clientCfg, logger)
}
