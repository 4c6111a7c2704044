package services

import (
	"context"
	"errors"
	"strings"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/models/vo"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ProjectAdminRepo 定义项目管理用例需要的持久化行为。
type ProjectAdminRepo interface {
	Create(ctx context.Context, sess txmanager.Session, project *po.Project) (*po.Project, error)
	FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error)
	Update(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, name, description *string) (*po.Project, error)
	Delete(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) error
	SetProviderCollection(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, collectionID string) error
	ListByMember(ctx context.Context, userID uuid.UUID, limit int) ([]*po.Project, error)
}

// MemberAdminRepo 定义成员管理用例需要的持久化行为。
type MemberAdminRepo interface {
	Upsert(ctx context.Context, sess txmanager.Session, member *po.ProjectMember) (*po.ProjectMember, error)
	Remove(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) error
	Find(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) (*po.ProjectMember, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*po.ProjectMember, error)
}

// CollectionCreator 定义服务商集合创建能力。
type CollectionCreator interface {
	Configured() bool
	CreateCollection(ctx context.Context, name string) (string, error)
}

// CreateProjectInput 为项目创建的输入参数。
type CreateProjectInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description *string
}

// UpdateProjectInput 为项目更新的输入参数，nil 字段表示不修改。
type UpdateProjectInput struct {
	CallerID    uuid.UUID
	ProjectID   uuid.UUID
	Name        *string
	Description *string
}

// ProjectService 封装项目与成员管理用例。
type ProjectService struct {
	projects  ProjectAdminRepo
	members   MemberAdminRepo
	gateway   CollectionCreator
	txManager txmanager.Manager
	log       *log.Helper
}

// NewProjectService 构造 ProjectService。
func NewProjectService(projects ProjectAdminRepo, members MemberAdminRepo, gateway CollectionCreator, tx txmanager.Manager, logger log.Logger) *ProjectService {
	return &ProjectService{
		projects:  projects,
		members:   members,
		gateway:   gateway,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// CreateProject 创建项目。服务商集合创建为 best-effort：
// 失败仅记录，项目照常可用，后续上传失去分组能力。
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*vo.ProjectDetail, error) {
	if input.OwnerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "name is required")
	}

	project := &po.Project{
		ProjectID:   uuid.New(),
		OwnerID:     input.OwnerID,
		Name:        name,
		Description: input.Description,
	}

	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, repoErr := s.projects.Create(txCtx, sess, project)
		return repoErr
	})
	if err != nil {
		s.log.WithContext(ctx).Errorf("create project failed: name=%s err=%v", name, err)
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to create project").WithCause(err)
	}

	if s.gateway.Configured() {
		if collectionID, err := s.gateway.CreateCollection(ctx, name); err != nil {
			s.log.WithContext(ctx).Warnf("provider collection creation failed: project_id=%s err=%v", project.ProjectID, err)
		} else if err := s.projects.SetProviderCollection(ctx, nil, project.ProjectID, collectionID); err != nil {
			s.log.WithContext(ctx).Warnf("persist provider collection failed: project_id=%s err=%v", project.ProjectID, err)
		} else {
			project.ProviderCollectionID = &collectionID
		}
	}

	s.log.WithContext(ctx).Infof("CreateProject: project_id=%s owner_id=%s", project.ProjectID, input.OwnerID)
	return vo.NewProjectDetail(project), nil
}

// UpdateProject 更新项目基本信息，仅所有者可操作。
func (s *ProjectService) UpdateProject(ctx context.Context, input UpdateProjectInput) (*vo.ProjectDetail, error) {
	if input.CallerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if input.Name == nil && input.Description == nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "no fields to update")
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, kerrors.BadRequest(ReasonInvalidArgument, "name must not be empty")
		}
		input.Name = &trimmed
	}

	project, err := s.loadProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != input.CallerID {
		return nil, ErrPermissionDenied
	}

	var updated *po.Project
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		p, repoErr := s.projects.Update(txCtx, sess, input.ProjectID, input.Name, input.Description)
		if repoErr != nil {
			return repoErr
		}
		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		s.log.WithContext(ctx).Errorf("update project failed: project_id=%s err=%v", input.ProjectID, err)
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to update project").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("UpdateProject: project_id=%s", input.ProjectID)
	return vo.NewProjectDetail(updated), nil
}

// DeleteProject 删除项目，仅所有者可操作。
// 项目内仍有视频时拒绝删除，避免服务商侧对象失去归属。
func (s *ProjectService) DeleteProject(ctx context.Context, callerID, projectID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return ErrPermissionDenied
	}
	if project.VideoCount > 0 {
		return kerrors.BadRequest(ReasonProjectNotEmpty, "project still contains videos")
	}

	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		return s.projects.Delete(txCtx, sess, projectID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			// 并发删除已先行完成。
			return nil
		}
		s.log.WithContext(ctx).Errorf("delete project failed: project_id=%s err=%v", projectID, err)
		return kerrors.InternalServer(ReasonStorageFailure, "failed to delete project").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("DeleteProject: project_id=%s", projectID)
	return nil
}

// GetProject 查询项目详情，仅所有者与成员可见。
func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*vo.ProjectDetail, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, project, userID); err != nil {
		return nil, err
	}
	return vo.NewProjectDetail(project), nil
}

// ListProjects 查询用户可见的项目列表。
func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID, limit int) ([]*vo.ProjectDetail, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	projects, err := s.projects.ListByMember(ctx, userID, limit)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to list projects").WithCause(err)
	}
	out := make([]*vo.ProjectDetail, 0, len(projects))
	for _, p := range projects {
		out = append(out, vo.NewProjectDetail(p))
	}
	return out, nil
}

// AddMember 添加或更新项目成员，仅所有者可操作。
func (s *ProjectService) AddMember(ctx context.Context, callerID, projectID, userID uuid.UUID, role po.ProjectRole) (*vo.MemberView, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !role.Valid() {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "invalid member role")
	}
	if userID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "user_id is required")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, ErrPermissionDenied
	}
	if project.OwnerID == userID {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "owner cannot be added as member")
	}

	member := &po.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if _, err := s.members.Upsert(ctx, nil, member); err != nil {
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to add project member").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("AddMember: project_id=%s user_id=%s role=%s", projectID, userID, role)
	return vo.NewMemberView(member), nil
}

// RemoveMember 移除项目成员，仅所有者可操作。
func (s *ProjectService) RemoveMember(ctx context.Context, callerID, projectID, userID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return ErrPermissionDenied
	}

	if err := s.members.Remove(ctx, nil, projectID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return kerrors.NotFound(ReasonProjectNotFound, "project member not found")
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to remove project member").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("RemoveMember: project_id=%s user_id=%s", projectID, userID)
	return nil
}

// ListMembers 查询项目成员，所有者与成员可见。
func (s *ProjectService) ListMembers(ctx context.Context, userID, projectID uuid.UUID) (*vo.MemberList, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, project, userID); err != nil {
		return nil, err
	}

	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to list project members").WithCause(err)
	}
	return vo.NewMemberList(members), nil
}

func (s *ProjectService) loadProject(ctx context.Context, projectID uuid.UUID) (*po.Project, error) {
	if projectID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "project_id is required")
	}
	project, err := s.projects.FindByID(ctx, nil, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to load project").WithCause(err)
	}
	return project, nil
}

func (s *ProjectService) checkAccess(ctx context.Context, project *po.Project, userID uuid.UUID) error {
	if project.OwnerID == userID {
		return nil
	}
	if _, err := s.members.Find(ctx, nil, project.ProjectID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrPermissionDenied
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project member").WithCause(err)
	}
	return nil
}
