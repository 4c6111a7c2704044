package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/events"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/models/vo"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// CommandVideoRepo 定义删除流程需要的视频持久化行为。
type CommandVideoRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) error
}

// CommandProjectRepo 定义删除流程需要的项目持久化行为。
type CommandProjectRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error)
	AdjustVideoCount(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, delta int32) error
}

// CommandMemberRepo 定义删除流程需要的成员查询行为。
type CommandMemberRepo interface {
	Find(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) (*po.ProjectMember, error)
}

// ProviderDeleter 定义服务商侧对象删除能力。
type ProviderDeleter interface {
	DeleteVideo(ctx context.Context, guid string) error
}

// DeleteVideoInput 表示单个删除的输入。
type DeleteVideoInput struct {
	VideoID uuid.UUID
	UserID  uuid.UUID
	Reason  *string
}

// DeleteVideosInput 表示批量删除的输入。
type DeleteVideosInput struct {
	VideoIDs []uuid.UUID
	UserID   uuid.UUID
}

// VideoCommandService 封装视频删除用例。
//
// 单个删除对服务商调用 fail-fast：远端删除失败则保留本地行并报错，
// 避免计费中的远端对象失去本地引用。批量删除按项降级：远端失败仅记录，
// 本地行照删，接受孤儿远端对象，换取批次不被单项卡死。两条路径的
// 不对称是历史行为，刻意保留。
type VideoCommandService struct {
	videos    CommandVideoRepo
	projects  CommandProjectRepo
	members   CommandMemberRepo
	outbox    WebhookOutboxWriter
	provider  ProviderDeleter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewVideoCommandService 构造 VideoCommandService。
func NewVideoCommandService(
	videos CommandVideoRepo,
	projects CommandProjectRepo,
	members CommandMemberRepo,
	outbox WebhookOutboxWriter,
	provider ProviderDeleter,
	tx txmanager.Manager,
	logger log.Logger,
) *VideoCommandService {
	return &VideoCommandService{
		videos:    videos,
		projects:  projects,
		members:   members,
		outbox:    outbox,
		provider:  provider,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// DeleteVideo 删除单个视频：先删服务商对象，成功后在同一事务内
// 删除本地行、递减项目计数并写入 video.deleted 事件。
func (s *VideoCommandService) DeleteVideo(ctx context.Context, input DeleteVideoInput) error {
	if input.UserID == uuid.Nil {
		return ErrUnauthenticated
	}

	video, err := s.loadVideo(ctx, input.VideoID)
	if err != nil {
		return err
	}
	if err := s.checkDeletePermission(ctx, video, input.UserID); err != nil {
		return err
	}

	if err := s.provider.DeleteVideo(ctx, video.ProviderGUID); err != nil {
		s.log.WithContext(ctx).Errorf("provider delete failed, keeping local row: video_id=%s guid=%s err=%v",
			video.VideoID, video.ProviderGUID, err)
		return kerrors.InternalServer(ReasonProviderCallFailed, "failed to delete provider video object").WithCause(err)
	}

	if err := s.deleteLocal(ctx, video, input.Reason); err != nil {
		return err
	}

	s.log.WithContext(ctx).Infof("DeleteVideo: video_id=%s project_id=%s", video.VideoID, video.ProjectID)
	return nil
}

// DeleteVideos 批量删除视频。远端删除失败按项降级，本地行仍然移除；
// 本地删除失败才记入 Failed 列表。
func (s *VideoCommandService) DeleteVideos(ctx context.Context, input DeleteVideosInput) (*vo.DeleteResult, error) {
	if input.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if len(input.VideoIDs) == 0 {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "video_ids is required")
	}

	result := &vo.DeleteResult{}
	for _, videoID := range input.VideoIDs {
		video, err := s.loadVideo(ctx, videoID)
		if err != nil {
			result.Failed = append(result.Failed, vo.DeleteFailed{VideoID: videoID, Reason: kerrors.FromError(err).GetMessage()})
			continue
		}
		if err := s.checkDeletePermission(ctx, video, input.UserID); err != nil {
			result.Failed = append(result.Failed, vo.DeleteFailed{VideoID: videoID, Reason: "permission denied"})
			continue
		}

		if err := s.provider.DeleteVideo(ctx, video.ProviderGUID); err != nil {
			// 批量路径接受孤儿远端对象，单项失败不阻塞批次。
			s.log.WithContext(ctx).Warnf("provider delete failed in bulk, removing local row anyway: video_id=%s guid=%s err=%v",
				video.VideoID, video.ProviderGUID, err)
		}

		if err := s.deleteLocal(ctx, video, nil); err != nil {
			s.log.WithContext(ctx).Errorf("local delete failed in bulk: video_id=%s err=%v", videoID, err)
			result.Failed = append(result.Failed, vo.DeleteFailed{VideoID: videoID, Reason: "failed to delete video record"})
			continue
		}
		result.Deleted = append(result.Deleted, videoID)
	}

	s.log.WithContext(ctx).Infof("DeleteVideos: requested=%d deleted=%d failed=%d",
		len(input.VideoIDs), len(result.Deleted), len(result.Failed))
	return result, nil
}

// deleteLocal 在单个事务内删除本地行、递减计数并写入删除事件。
func (s *VideoCommandService) deleteLocal(ctx context.Context, video *po.Video, reason *string) error {
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if repoErr := s.videos.Delete(txCtx, sess, video.VideoID); repoErr != nil {
			return repoErr
		}
		if repoErr := s.projects.AdjustVideoCount(txCtx, sess, video.ProjectID, -1); repoErr != nil {
			return repoErr
		}

		deletedEvent, buildErr := events.NewVideoDeletedEvent(video, uuid.New(), time.Now().UTC(), reason)
		if buildErr != nil {
			return fmt.Errorf("build video deleted event: %w", buildErr)
		}
		return enqueueDomainEvent(txCtx, sess, s.outbox, deletedEvent)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return ErrVideoNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return kerrors.GatewayTimeout(ReasonQueryTimeout, "delete timeout")
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to delete video record").WithCause(err)
	}
	return nil
}

func (s *VideoCommandService) loadVideo(ctx context.Context, videoID uuid.UUID) (*po.Video, error) {
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
	return video, nil
}

// checkDeletePermission 校验调用者为上传者、项目所有者或具备删除角色的成员。
func (s *VideoCommandService) checkDeletePermission(ctx context.Context, video *po.Video, userID uuid.UUID) error {
	if video.UploaderID == userID {
		return nil
	}
	project, err := s.projects.FindByID(ctx, nil, video.ProjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project").WithCause(err)
	}
	if project.OwnerID == userID {
		return nil
	}
	member, err := s.members.Find(ctx, nil, video.ProjectID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrPermissionDenied
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project member").WithCause(err)
	}
	if !member.Role.CanDelete() {
		return ErrPermissionDenied
	}
	return nil
}
