package controllers

import (
	"strconv"
	"strings"

	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

// RegisterRoutes 将所有 Handler 挂载到 /v1 路由组。
func RegisterRoutes(
	srv *khttp.Server,
	webhook *WebhookHandler,
	upload *UploadHandler,
	video *VideoHandler,
	project *ProjectHandler,
	comment *CommentHandler,
) {
	route := srv.Route("/v1")
	webhook.Register(route)
	upload.Register(route)
	video.Register(route)
	project.Register(route)
	comment.Register(route)
}

// requireUser 解析网关透传的用户身份，缺失或非法时返回认证错误。
func requireUser(h *BaseHandler, ctx khttp.Context) (uuid.UUID, error) {
	meta := h.ExtractMetadata(ctx)
	userID, ok := meta.UserUUID()
	if !ok {
		if strings.TrimSpace(meta.UserID) != "" {
			return uuid.Nil, kerrors.BadRequest(services.ReasonInvalidArgument, "invalid user metadata")
		}
		return uuid.Nil, kerrors.Unauthorized(services.ReasonUnauthenticated, "user identity required")
	}
	return userID, nil
}

// parseLimit 解析 limit 查询参数，非法或缺省时返回 0 由服务层兜底。
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
