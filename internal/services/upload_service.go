package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// UploadVideoRepo 抽象上传流程需要的视频持久化操作，便于测试。
type UploadVideoRepo interface {
	Create(ctx context.Context, sess txmanager.Session, video *po.Video) (*po.Video, error)
}

// UploadProjectRepo 抽象上传流程需要的项目持久化操作。
type UploadProjectRepo interface {
	FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error)
	AdjustVideoCount(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, delta int32) error
}

// UploadMemberRepo 抽象上传流程需要的成员查询操作。
type UploadMemberRepo interface {
	Find(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) (*po.ProjectMember, error)
}

// UploadProviderGateway 定义上传流程需要的服务商能力。
// 签名为 hex(SHA-256)，覆盖库 ID、凭据、过期时间与对象 ID。
type UploadProviderGateway interface {
	Configured() bool
	LibraryID() int64
	CreateVideo(ctx context.Context, title string) (string, error)
	AssignToCollection(ctx context.Context, guid, collectionID string) error
	SignUpload(guid string, expiresAt time.Time) string
	UploadEndpoint() string
}

// CreateUploadInput 为上传初始化的输入参数。
type CreateUploadInput struct {
	ProjectID         uuid.UUID
	UserID            uuid.UUID
	Title             string
	PreviousVersionID *uuid.UUID
}

// UploadService 实现上传初始化用例：先建服务商对象，再落本地记录，
// 最后返回客户端直传所需的签名凭据。
type UploadService struct {
	videos    UploadVideoRepo
	projects  UploadProjectRepo
	members   UploadMemberRepo
	outbox    WebhookOutboxWriter
	gateway   UploadProviderGateway
	txManager txmanager.Manager
	ttl       time.Duration
	now       func() time.Time
	log       *log.Helper
}

// NewUploadService 创建 UploadService。
func NewUploadService(
	videos UploadVideoRepo,
	projects UploadProjectRepo,
	members UploadMemberRepo,
	outbox WebhookOutboxWriter,
	gateway UploadProviderGateway,
	tx txmanager.Manager,
	ttl time.Duration,
	logger log.Logger,
) (*UploadService, error) {
	switch {
	case videos == nil:
		return nil, errors.New("upload service: video repository is required")
	case projects == nil:
		return nil, errors.New("upload service: project repository is required")
	case members == nil:
		return nil, errors.New("upload service: member repository is required")
	case gateway == nil:
		return nil, errors.New("upload service: provider gateway is required")
	case tx == nil:
		return nil, errors.New("upload service: tx manager is required")
	case ttl <= 0:
		return nil, errors.New("upload service: signature ttl must be positive")
	}

	return &UploadService{
		videos:    videos,
		projects:  projects,
		members:   members,
		outbox:    outbox,
		gateway:   gateway,
		txManager: tx,
		ttl:       ttl,
		now:       time.Now,
		log:       log.NewHelper(logger),
	}, nil
}

// CreateUpload 执行上传初始化。
// 配置缺失是硬失败，与权限失败区分；集合归属为 best-effort，失败不回滚。
func (s *UploadService) CreateUpload(ctx context.Context, input CreateUploadInput) (*vo.UploadAuthorization, error) {
	if input.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "title is required")
	}
	if input.ProjectID == uuid.Nil {
		return nil, kerrors.BadRequest(ReasonInvalidArgument, "project_id is required")
	}

	project, err := s.projects.FindByID(ctx, nil, input.ProjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to load project").WithCause(err)
	}

	if err := s.checkUploadPermission(ctx, project, input.UserID); err != nil {
		return nil, err
	}

	if !s.gateway.Configured() {
		return nil, kerrors.InternalServer(ReasonProviderNotConfigured, "video provider credentials not configured")
	}

	guid, err := s.gateway.CreateVideo(ctx, title)
	if err != nil {
		s.log.WithContext(ctx).Errorf("provider create video failed: project_id=%s err=%v", input.ProjectID, err)
		return nil, kerrors.InternalServer(ReasonProviderCallFailed, "failed to create provider video object").WithCause(err)
	}

	video := &po.Video{
		VideoID:           uuid.New(),
		ProjectID:         input.ProjectID,
		UploaderID:        input.UserID,
		ProviderGUID:      guid,
		LibraryID:         s.gateway.LibraryID(),
		Title:             title,
		Status:            po.VideoStatusUploading,
		PreviousVersionID: input.PreviousVersionID,
	}

	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, repoErr := s.videos.Create(txCtx, sess, video); repoErr != nil {
			return repoErr
		}
		if repoErr := s.projects.AdjustVideoCount(txCtx, sess, input.ProjectID, 1); repoErr != nil {
			return repoErr
		}

		createdEvent, buildErr := events.NewVideoCreatedEvent(video, uuid.New(), video.CreatedAt)
		if buildErr != nil {
			return fmt.Errorf("build video created event: %w", buildErr)
		}
		return enqueueDomainEvent(txCtx, sess, s.outbox, createdEvent)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, kerrors.GatewayTimeout(ReasonQueryTimeout, "create upload timeout")
		}
		s.log.WithContext(ctx).Errorf("persist video failed: guid=%s err=%v", guid, err)
		return nil, kerrors.InternalServer(ReasonStorageFailure, "failed to persist video record").WithCause(err)
	}

	// 集合归属失败只降级记录，视频照常可用，仅失去分组。
	if project.ProviderCollectionID != nil && *project.ProviderCollectionID != "" {
		if err := s.gateway.AssignToCollection(ctx, guid, *project.ProviderCollectionID); err != nil {
			s.log.WithContext(ctx).Warnf("collection assignment failed: guid=%s collection=%s err=%v",
				guid, *project.ProviderCollectionID, err)
		}
	}

	expiresAt := s.now().Add(s.ttl).UTC()
	auth := &vo.UploadAuthorization{
		VideoID:      video.VideoID,
		ProviderGUID: guid,
		LibraryID:    s.gateway.LibraryID(),
		Signature:    s.gateway.SignUpload(guid, expiresAt),
		SignatureExp: expiresAt.Unix(),
		UploadURL:    s.gateway.UploadEndpoint(),
		CreatedAt:    video.CreatedAt,
	}

	s.log.WithContext(ctx).Infof("CreateUpload: video_id=%s project_id=%s guid=%s", video.VideoID, input.ProjectID, guid)
	return auth, nil
}

// checkUploadPermission 校验调用者为项目所有者或具备上传角色的成员。
func (s *UploadService) checkUploadPermission(ctx context.Context, project *po.Project, userID uuid.UUID) error {
	if project.OwnerID == userID {
		return nil
	}
	member, err := s.members.Find(ctx, nil, project.ProjectID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrPermissionDenied
		}
		return kerrors.InternalServer(ReasonStorageFailure, "failed to load project member").WithCause(err)
	}
	if !member.Role.CanUpload() {
		return ErrPermissionDenied
	}
	return nil
}
