// Package httpserver wires the inbound HTTP server and its middleware stack.
package httpserver

import (
	stdhttp "net/http"

	"github.com/bionicotaku/lingo-services-review/internal/controllers"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"

	obsTrace "github.com/bionicotaku/lingo-utils/observability/tracing"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	webhook *controllers.WebhookHandler,
	upload *controllers.UploadHandler,
	video *controllers.VideoHandler,
	project *controllers.ProjectHandler,
	comment *controllers.CommentHandler,
	logger log.Logger,
) *http.Server {
	opts := []http.ServerOption{
		http.Middleware(
			obsTrace.Server(),
			recovery.Recovery(),
			metadata.Server(
				metadata.WithPropagatedPrefix("x-md-global-"),
			),
			ratelimit.Server(),
			logging.Server(logger),
		),
	}
	if c != nil && c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, http.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.HTTP.Addr))
		}
		if timeout := c.HTTP.Timeout(); timeout > 0 {
			opts = append(opts, http.Timeout(timeout))
		}
	}

	srv := http.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))

	srv.Handle("/readyz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		// 预留 readiness 校验钩子：若未来需要检查数据库等依赖，可在此处扩展。
		w.WriteHeader(stdhttp.StatusOK)
	}))

	controllers.RegisterRoutes(srv, webhook, upload, video, project, comment)
	return srv
}
