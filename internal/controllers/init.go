package controllers

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"

	"github.com/google/wire"
)

// ProviderSet exposes controller/handler constructors for DI.
var ProviderSet = wire.NewSet(
	ProvideHandlerTimeouts,
	NewBaseHandler,
	NewWebhookHandler,
	NewUploadHandler,
	NewVideoHandler,
	NewProjectHandler,
	NewCommentHandler,
)

// ProvideHandlerTimeouts 从配置推导 Handler 超时策略。
func ProvideHandlerTimeouts(c *conf.Server) HandlerTimeouts {
	if c == nil || c.Handler == nil {
		return HandlerTimeouts{}
	}
	return HandlerTimeouts{
		Default: secondsDuration(c.Handler.DefaultSeconds),
		Command: secondsDuration(c.Handler.CommandSeconds),
		Query:   secondsDuration(c.Handler.QuerySeconds),
	}
}

func secondsDuration(seconds int64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
