package controllers

import (
	"context"
	"strings"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 项目与成员管理接口的操作名。
const (
	OperationCreateProject = "/review.v1.ProjectService/CreateProject"
	OperationGetProject    = "/review.v1.ProjectService/GetProject"
	OperationListProjects  = "/review.v1.ProjectService/ListProjects"
	OperationUpdateProject = "/review.v1.ProjectService/UpdateProject"
	OperationDeleteProject = "/review.v1.ProjectService/DeleteProject"
	OperationAddMember     = "/review.v1.ProjectService/AddMember"
	OperationRemoveMember  = "/review.v1.ProjectService/RemoveMember"
	OperationListMembers   = "/review.v1.ProjectService/ListMembers"
)

// ProjectHandler 实现项目与成员管理 HTTP 接口。
type ProjectHandler struct {
	*BaseHandler
	svc *services.ProjectService
}

// NewProjectHandler 构造 ProjectHandler。
func NewProjectHandler(base *BaseHandler, svc *services.ProjectService) *ProjectHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &ProjectHandler{BaseHandler: base, svc: svc}
}

// Register 挂载项目路由。
func (h *ProjectHandler) Register(r *khttp.Router) {
	r.POST("/projects", h.createProject)
	r.GET("/projects", h.listProjects)
	r.GET("/projects/{project_id}", h.getProject)
	r.PATCH("/projects/{project_id}", h.updateProject)
	r.DELETE("/projects/{project_id}", h.deleteProject)
	r.POST("/projects/{project_id}/members", h.addMember)
	r.DELETE("/projects/{project_id}/members/{user_id}", h.removeMember)
	r.GET("/projects/{project_id}/members", h.listMembers)
}

func (h *ProjectHandler) createProject(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationCreateProject)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.CreateProject(timeoutCtx, req.ToCreateProjectInput(userID))
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *ProjectHandler) listProjects(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationListProjects)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	limit := parseLimit(ctx.Query().Get("limit"))

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.svc.ListProjects(timeoutCtx, userID, limit)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *ProjectHandler) getProject(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationGetProject)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.svc.GetProject(timeoutCtx, userID, projectID)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *ProjectHandler) updateProject(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationUpdateProject)

	callerID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}
	var req dto.UpdateProjectRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.UpdateProject(timeoutCtx, req.ToUpdateProjectInput(callerID, projectID))
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *ProjectHandler) deleteProject(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationDeleteProject)

	callerID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return nil, h.svc.DeleteProject(timeoutCtx, callerID, projectID)
	})
	if _, err := handler(ctx, nil); err != nil {
		return err
	}
	return ctx.Result(200, struct{}{})
}

func (h *ProjectHandler) addMember(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationAddMember)

	callerID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	var req dto.AddMemberRequest
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	userID, err := dto.ParseUserID(req.UserID)
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}
	role := po.ProjectRole(strings.ToLower(strings.TrimSpace(req.Role)))

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return h.svc.AddMember(timeoutCtx, callerID, projectID, userID, role)
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (h *ProjectHandler) removeMember(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationRemoveMember)

	callerID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}
	userID, err := dto.ParseUserID(ctx.Vars().Get("user_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeCommand)
		defer cancel()
		return nil, h.svc.RemoveMember(timeoutCtx, callerID, projectID, userID)
	})
	if _, err := handler(ctx, nil); err != nil {
		return err
	}
	return ctx.Result(200, struct{}{})
}

func (h *ProjectHandler) listMembers(ctx khttp.Context) error {
	khttp.SetOperation(ctx, OperationListMembers)

	userID, err := requireUser(h.BaseHandler, ctx)
	if err != nil {
		return err
	}
	projectID, err := dto.ParseProjectID(ctx.Vars().Get("project_id"))
	if err != nil {
		return kerrors.BadRequest(services.ReasonInvalidArgument, err.Error())
	}

	handler := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		timeoutCtx, cancel := h.WithTimeout(c, HandlerTypeQuery)
		defer cancel()
		return h.svc.ListMembers(timeoutCtx, userID, projectID)
	})
	out, err := handler(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
