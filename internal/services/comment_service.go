package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bionicotaku/lingo-services-review/internal/models/events"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/models/vo"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// CommentProjectRepo 定义评论用例需要的项目持久化行为。
type CommentProjectRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error)
	AdjustCommentCount(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, delta int32) error
}

// CommentRepo 定义评论用例需要的持久化行为。
type CommentRepo interface {
	Create(ctx context.Context, sess txmanager.Session, comment *po.Comment) (*po.Comment, error)
	FindByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error)
	SoftDelete(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error)
	ListByVideo(ctx context.Context, videoID uuid.UUID, limit int) ([]*po.Comment, error)
}

// CreateCommentInput 为评论创建的输入参数。
type CreateCommentInput struct {
	VideoID         uuid.UUID
	UserID          uuid.UUID
	Body            string
	TimecodeSeconds *float64
	ParentID        *uuid.UUID
	Mentions        []uuid.UUID
}

// CommentService 封装带时间码的线程化评论用例。
//
// comment.created 与业务写入同事务经 Outbox 发布；comment.mentioned
// 按被 @ 用户逐条投递，各自独立失败、并行汇合且互不阻断，失败仅记录。
type CommentService struct {
	comments  CommentRepo
	videos    CommandVideoRepo
	projects  CommentProjectRepo
	members   CommandMemberRepo
	outbox    WebhookOutboxWriter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewCommentService 构造 CommentService。
func NewCommentService(
	comments CommentRepo,
	videos CommandVideoRepo,
	projects CommentProjectRepo,
	members CommandMemberRepo,
	outbox WebhookOutboxWriter,
	tx txmanager.Manager,
	logger log.Logger,
) *CommentService {
	return &CommentService{
		comments:  comments,
		videos:    videos,
		projects:  projects,
		members:   members,
		outbox:    outbox,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// CreateComment 创建评论（可选时间码、线程回复与 @ 列表）。
func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (*vo.CommentView, error) {
	if input.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "body is required")
	}
	if input.TimecodeSeconds != nil && *input.TimecodeSeconds < 0 {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "timecode_seconds must be non-negative")
	}

	video, err := s.loadVideo(ctx, input.VideoID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCommentPermission(ctx, video.ProjectID, input.UserID); err != nil {
		return nil, err
	}
	if err := s.validateParent(ctx, input.ParentID, input.VideoID); err != nil {
		return nil, err
	}

	comment := &po.Comment{
		CommentID:       uuid.New(),
		VideoID:         video.VideoID,
		ProjectID:       video.ProjectID,
		AuthorID:        input.UserID,
		ParentID:        input.ParentID,
		Body:            body,
		TimecodeSeconds: input.TimecodeSeconds,
		Mentions:        dedupeMentions(input.Mentions, input.UserID),
	}

	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, repoErr := s.comments.Create(txCtx, sess, comment); repoErr != nil {
			return repoErr
		}
		if repoErr := s.projects.AdjustCommentCount(txCtx, sess, video.ProjectID, 1); repoErr != nil {
			return repoErr
		}

		createdEvent, buildErr := events.NewCommentCreatedEvent(comment, uuid.New(), comment.CreatedAt)
		if buildErr != nil {
			return buildErr
		}
		return enqueueDomainEvent(txCtx, sess, s.outbox, createdEvent)
	})
	if err != nil {
		s.log.WithContext(ctx).Errorf("create comment failed: video_id=%s err=%v", input.VideoID, err)
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to create comment").WithCause(err)
	}

	s.notifyMentions(ctx, comment)

	s.log.WithContext(ctx).Infof("CreateComment: comment_id=%s video_id=%s mentions=%d",
		comment.CommentID, comment.VideoID, len(comment.Mentions))
	return vo.NewCommentView(comment), nil
}

// DeleteComment 软删除评论：作者、项目所有者或具备删除角色的成员可操作。
// 重复删除按幂等成功处理。
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if commentID == uuid.Nil {
		return kerrors.BadRequest(ReasonInvalidArgument, "comment_id is required")
	}

	comment, err := s.comments.FindByID(ctx, nil, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load comment").WithCause(err)
	}
	if comment.Deleted() {
		return nil
	}

	if err := s.checkDeletePermission(ctx, comment, userID); err != nil {
		return err
	}

	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, repoErr := s.comments.SoftDelete(txCtx, sess, commentID); repoErr != nil {
			return repoErr
		}
		return s.projects.AdjustCommentCount(txCtx, sess, comment.ProjectID, -1)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			// 并发删除已先行完成。
			return nil
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to delete comment").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("DeleteComment: comment_id=%s", commentID)
	return nil
}

// ListComments 查询视频下的全部评论（含软删除墓碑），按创建时间正序。
func (s *CommentService) ListComments(ctx context.Context, userID, videoID uuid.UUID, limit int) (*vo.CommentList, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	video, err := s.loadVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadPermission(ctx, video.ProjectID, userID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByVideo(ctx, videoID, limit)
	if err != nil {
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to list comments").WithCause(err)
	}
	return vo.NewCommentList(comments), nil
}

// notifyMentions 为每个被 @ 用户投递 comment.mentioned 事件。
// 各投递并行执行、独立失败，不影响评论创建结果。
func (s *CommentService) notifyMentions(ctx context.Context, comment *po.Comment) {
	if len(comment.Mentions) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, mentioned := range comment.Mentions {
		wg.Add(1)
		go func(target uuid.UUID) {
			defer wg.Done()
			event, err := events.NewCommentMentionedEvent(comment, target, uuid.New(), comment.CreatedAt)
			if err != nil {
				s.log.WithContext(ctx).Warnf("build mention event failed: comment_id=%s user_id=%s err=%v",
					comment.CommentID, target, err)
				return
			}
			if err := enqueueDomainEvent(ctx, nil, s.outbox, event); err != nil {
				s.log.WithContext(ctx).Warnf("enqueue mention event failed: comment_id=%s user_id=%s err=%v",
					comment.CommentID, target, err)
			}
		}(mentioned)
	}
	wg.Wait()
}

func (s *CommentService) loadVideo(ctx context.Context, videoID uuid.UUID) (*po.Video, error) {
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

// validateParent 校验线程回复：父评论必须存在、同视频且未被删除。
func (s *CommentService) validateParent(ctx context.Context, parentID *uuid.UUID, videoID uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parent, err := s.comments.FindByID(ctx, nil, *parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return kerrors.BadRequest(ReasonInvalidArgument, "parent comment not found")
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load parent comment").WithCause(err)
	}
	if parent.VideoID != videoID {
		return kerrors.BadRequest(ReasonInvalidArgument, "parent comment belongs to another video")
	}
	if parent.Deleted() {
		return kerrors.BadRequest(ReasonInvalidArgument, "parent comment is deleted")
	}
	return nil
}

func (s *CommentService) checkCommentPermission(ctx context.Context, projectID, userID uuid.UUID) error {
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
	member, err := s.members.Find(ctx, nil, projectID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrPermissionDenied
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project member").WithCause(err)
	}
	if !member.Role.CanComment() {
		return ErrPermissionDenied
	}
	return nil
}

func (s *CommentService) checkReadPermission(ctx context.Context, projectID, userID uuid.UUID) error {
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

func (s *CommentService) checkDeletePermission(ctx context.Context, comment *po.Comment, userID uuid.UUID) error {
	if comment.AuthorID == userID {
		return nil
	}
	project, err := s.projects.FindByID(ctx, nil, comment.ProjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project").WithCause(err)
	}
	if project.OwnerID == userID {
		return nil
	}
	member, err := s.members.Find(ctx, nil, comment.ProjectID, userID)
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

// dedupeMentions 去重 @ 列表并剔除作者自身。
func dedupeMentions(mentions []uuid.UUID, author uuid.UUID) []uuid.UUID {
	if len(mentions) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(mentions))
	out := make([]uuid.UUID, 0, len(mentions))
	for _, m := range mentions {
		if m == uuid.Nil || m == author {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
