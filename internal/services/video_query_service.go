package services

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/models/vo"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// QueryVideoRepo 定义读模型需要的视频查询行为。
type QueryVideoRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*po.Video, error)
}

// QueryMembershipChecker 定义读路径的访问校验行为。
type QueryMembershipChecker interface {
	FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error)
}

// VideoQueryService 封装视频读模型用例。
// 客户端在上传后轮询 GetVideo 获取处理进度，状态字段即为进度。
type VideoQueryService struct {
	videos   QueryVideoRepo
	projects QueryMembershipChecker
	members  CommandMemberRepo
	log      *log.Helper
}

// NewVideoQueryService 构造 VideoQueryService。
func NewVideoQueryService(videos QueryVideoRepo, projects QueryMembershipChecker, members CommandMemberRepo, logger log.Logger) *VideoQueryService {
	return &VideoQueryService{
		videos:   videos,
		projects: projects,
		members:  members,
		log:      log.NewHelper(logger),
	}
}

// GetVideo 查询单个视频详情。
func (s *VideoQueryService) GetVideo(ctx context.Context, userID, videoID uuid.UUID) (*vo.VideoDetail, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if videoID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "video_id is required")
	}

	video, err := s.videos.FindByID(ctx, nil, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to load video").WithCause(err)
	}

	if err := s.checkProjectAccess(ctx, video.ProjectID, userID); err != nil {
		return nil, err
	}

	return vo.NewVideoDetail(video), nil
}

// ListProjectVideos 查询项目下的视频列表。
func (s *VideoQueryService) ListProjectVideos(ctx context.Context, userID, projectID uuid.UUID, limit int) (*vo.VideoList, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if projectID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "project_id is required")
	}

	if err := s.checkProjectAccess(ctx, projectID, userID); err != nil {
		return nil, err
	}

	videos, err := s.videos.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to list videos").WithCause(err)
	}
	return vo.NewVideoList(videos), nil
}

// checkProjectAccess 校验调用者为项目所有者或任意成员（只读可见）。
func (s *VideoQueryService) checkProjectAccess(ctx context.Context, projectID, userID uuid.UUID) error {
	project, err := s.projects.FindByID(ctx, nil, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project").WithCause(err)
	}
	if project.OwnerID == userID {
		return nil
	}
	if _, err := s.members.Find(ctx, nil, projectID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrPermissionDenied
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project member").WithCause(err)
	}
	return nil
}
