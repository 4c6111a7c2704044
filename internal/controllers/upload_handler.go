package controllers

import (
	"context"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// OperationCreateUpload 是上传初始化的操作名。
const OperationCreateUpload = "/review.v1.UploadService/CreateUpload"

// UploadHandler 实现上传初始化 HTTP 接口。
type UploadHandler struct {
	*BaseHandler
	svc *services.UploadService
}

// NewUploadHandler 构造 UploadHandler。
func NewUploadHandler(base *BaseHandler, svc *services.UploadService) *UploadHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &UploadHandler{BaseHandler: base, svc: svc}
}

// Register 挂载上传路由。
func (h *UploadHandler) Register(r *khttp.Router) {
	r.POST("/projects/{project_id}/videos", h.createUpload)
}

// createUpload 处理上传初始化请求，返回客户端直传凭据。
func (h *UploadHandler) createUpload(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationCreateUpload)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	var req dto.CreateUploadRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input, err := req.ToCreateUploadInput(projectID, userID)
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.CreateUpload(timeoutCtx, input)
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
