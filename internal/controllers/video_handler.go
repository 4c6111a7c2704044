package controllers

import (
	"context"
	"strings"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 视频读写接口的操作名。
const (
	OperationGetVideo     = "/review.v1.VideoService/GetVideo"
	OperationListVideos   = "/review.v1.VideoService/ListProjectVideos"
	OperationDeleteVideo  = "/review.v1.VideoService/DeleteVideo"
	OperationDeleteVideos = "/review.v1.VideoService/DeleteVideos"
)

// VideoHandler 实现视频查询与删除 HTTP 接口。
type VideoHandler struct {
	*BaseHandler
	query   *services.VideoQueryService
	command *services.VideoCommandService
}

// NewVideoHandler 构造 VideoHandler。
func NewVideoHandler(base *BaseHandler, query *services.VideoQueryService, command *services.VideoCommandService) *VideoHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &VideoHandler{BaseHandler: base, query: query, command: command}
}

// Register 挂载视频路由。
func (h *VideoHandler) Register(r *khttp.Router) {
	r.GET("/videos/{video_id}", h.getVideo)
	r.GET("/projects/{project_id}/videos", h.listVideos)
	r.DELETE("/videos/{video_id}", h.deleteVideo)
	r.POST("/videos/batch-delete", h.deleteVideos)
}

// getVideo 查询单个视频详情；客户端轮询此接口获取处理进度。
func (h *VideoHandler) getVideo(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationGetVideo)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.query.GetVideo(timeoutCtx, userID, videoID)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// listVideos 查询项目下的视频列表。
func (h *VideoHandler) listVideos(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationListVideos)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}
	limit := parseLimit(ctx.Query().Get("limit"))

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.query.ListProjectVideos(timeoutCtx, userID, projectID, limit)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// deleteVideo 删除单个视频，可选 reason 查询参数进入删除事件。
func (h *VideoHandler) deleteVideo(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationDeleteVideo)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	input := services.DeleteVideoInput{VideoID: videoID, UserID: userID}
	if reason := strings.TrimSpace(ctx.Query().Get("reason")); reason != "" {
		input.Reason = &reason
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return nil, h.command.DeleteVideo(timeoutCtx, input)
	})
	if _, err := handler(ctx, nil); err != nil {
		return err
	}
	return ctx.Result(200, struct{}{})
}

// deleteVideos 批量删除视频，返回逐项成败结果。
func (h *VideoHandler) deleteVideos(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationDeleteVideos)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}

	var req dto.BatchDeleteVideosRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input, err := req.ToDeleteVideosInput(userID)
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.command.DeleteVideos(timeoutCtx, input)
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
