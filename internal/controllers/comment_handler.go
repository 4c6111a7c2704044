package controllers

import (
	"context"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 评论接口的操作名。
const (
	OperationCreateComment = "/review.v1.CommentService/CreateComment"
	OperationListComments  = "/review.v1.CommentService/ListComments"
	OperationDeleteComment = "/review.v1.CommentService/DeleteComment"
)

// CommentHandler 实现时间码评论 HTTP 接口。
type CommentHandler struct {
	*BaseHandler
	svc *services.CommentService
}

// NewCommentHandler 构造 CommentHandler。
func NewCommentHandler(base *BaseHandler, svc *services.CommentService) *CommentHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &CommentHandler{BaseHandler: base, svc: svc}
}

// Register 挂载评论路由。
func (h *CommentHandler) Register(r *khttp.Router) {
	r.POST("/videos/{video_id}/comments", h.createComment)
	r.GET("/videos/{video_id}/comments", h.listComments)
	r.DELETE("/comments/{comment_id}", h.deleteComment)
}

func (h *CommentHandler) createComment(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationCreateComment)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	var req dto.CreateCommentRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input, err := req.ToCreateCommentInput(videoID, userID)
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.CreateComment(timeoutCtx, input)
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *CommentHandler) listComments(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationListComments)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("video_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}
	limit := parseLimit(ctx.Query().Get("limit"))

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.svc.ListComments(timeoutCtx, userID, videoID, limit)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *CommentHandler) deleteComment(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationDeleteComment)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	commentID, err := dto.ParseCommentID(ctx.Vars().Get("comment_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return nil, h.svc.DeleteComment(timeoutCtx, userID, commentID)
	})
	if _, err := handler(ctx, nil); err != nil {
		return err
	}
	return ctx.Result(200, struct{}{})
}
