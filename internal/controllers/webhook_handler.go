package controllers

import (
	"context"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// OperationProviderStatusWebhook 是状态 Webhook 的操作名。
const OperationProviderStatusWebhook = "/review.v1.WebhookService/ProviderStatus"

// WebhookHandler 接收服务商状态回调。端点无调用者身份，
// 鉴权依赖部署层（网关签名校验或私有路由）。
type WebhookHandler struct {
	*BaseHandler
	svc *services.WebhookService
	log *log.Helper
}

// NewWebhookHandler 构造 WebhookHandler。
func NewWebhookHandler(base *BaseHandler, svc *services.WebhookService, logger log.Logger) *WebhookHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &WebhookHandler{BaseHandler: base, svc: svc, log: log.NewHelper(logger)}
}

// Register 挂载 Webhook 路由。
func (h *WebhookHandler) Register(r *khttp.Router) {
	r.POST("/webhooks/provider/status", h.handleStatusEvent)
}

// handleStatusEvent 处理状态回调。预期内的不利结果（未知视频、
// 库不匹配等）以 200 + success=false 返回，避免服务商无谓重试；
// 仅数据库故障返回 5xx 以触发重试。
func (h *WebhookHandler) handleStatusEvent(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationProviderStatusWebhook)

	var req dto.ProviderWebhookRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid webhook payload")
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.HandleStatusEvent(timeoutCtx, req.ToStatusEvent())
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
