package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-review/internal/models/events"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// WebhookVideoRepo 定义协调器需要的视频持久化行为。
type WebhookVideoRepo interface {
	FindByProviderGUID(ctx context.Context, sess txmanager.Session, guid string) (*po.Video, error)
	MarkProcessing(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	MarkReady(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, media po.ReadyMedia) (*po.Video, error)
	MarkFailed(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, message string) (*po.Video, error)
}

// WebhookOutboxWriter 定义 Outbox 写入行为。
type WebhookOutboxWriter interface {
	Enqueue(ctx context.Context, sess txmanager.Session, msg repositories.OutboxMessage) error
}

// WebhookMediaGateway 定义协调器需要的服务商能力。
type WebhookMediaGateway interface {
	Configured() bool
	LibraryID() int64
	FetchVideoMetadata(ctx context.Context, guid string) (*po.ProviderVideoMetadata, error)
	ThumbnailURL(guid, fileName string) string
	PlaybackURL(guid string) string
}

// StatusEvent 是 Webhook 端点接收的状态事件。
type StatusEvent struct {
	LibraryID  int64
	VideoGUID  string
	StatusCode po.ProviderStatus
}

// StatusEventResult 是协调器的统一返回：预期内的不利结果不抛错误。
// error 仅保留给本地存储不可用等真正的基础设施故障。
type StatusEventResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// 处理失败时的兜底文案，元数据不可用时使用。
const genericProcessingFailure = "video processing failed"

// WebhookService 实现视频状态协调器：将乱序、至少一次投递的服务商事件
// 收敛为幂等的本地状态更新。
type WebhookService struct {
	repo      WebhookVideoRepo
	outbox    WebhookOutboxWriter
	gateway   WebhookMediaGateway
	txManager txmanager.Manager
	log       *log.Helper
}

// NewWebhookService 构造 WebhookService。
func NewWebhookService(
	repo WebhookVideoRepo,
	outbox WebhookOutboxWriter,
	gateway WebhookMediaGateway,
	tx txmanager.Manager,
	logger log.Logger,
) *WebhookService {
	return &WebhookService{
		repo:      repo,
		outbox:    outbox,
		gateway:   gateway,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// HandleStatusEvent 处理一次状态事件。
//
// 处理顺序：配置校验 → 租户校验 → 记录查找 → 终态守卫 → 按状态码分派。
// 终态守卫在每个事件上重新读取，不做缓存；重复与乱序投递由此兜底。
func (s *WebhookService) HandleStatusEvent(ctx context.Context, event StatusEvent) (StatusEventResult, error) {
	if !s.gateway.Configured() {
		s.log.WithContext(ctx).Errorf("webhook rejected: provider credentials not configured")
		return StatusEventResult{Success: false, Message: "provider credentials not configured"}, nil
	}

	if event.LibraryID != s.gateway.LibraryID() {
		s.log.WithContext(ctx).Warnf("webhook rejected: library mismatch got=%d want=%d", event.LibraryID, s.gateway.LibraryID())
		return StatusEventResult{Success: false, Message: "library id mismatch"}, nil
	}

	if strings.TrimSpace(event.VideoGUID) == "" {
		return StatusEventResult{Success: false, Message: "video guid is required"}, nil
	}

	video, err := s.repo.FindByProviderGUID(ctx, nil, event.VideoGUID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			s.log.WithContext(ctx).Warnf("webhook ignored: video not found guid=%s", event.VideoGUID)
			return StatusEventResult{Success: false, Message: "video not found"}, nil
		}
		return StatusEventResult{}, fmt.Errorf("lookup video by provider guid: %w", err)
	}

	// 终态守卫：ready / failed 后任何事件都不再改动记录。
	if video.Status.IsTerminal() {
		s.log.WithContext(ctx).Infof("webhook no-op: video in terminal state video_id=%s status=%s code=%d",
			video.VideoID, video.Status, event.StatusCode)
		return StatusEventResult{Success: true, Message: "video already in terminal state"}, nil
	}

	switch {
	case event.StatusCode.IsInProgress():
		return s.applyProcessing(ctx, video, event)
	case event.StatusCode.IsCompletion():
		return s.applyCompletion(ctx, video, event)
	case event.StatusCode.IsFailure():
		return s.applyFailure(ctx, video, event)
	default:
		// 预签名上传、字幕、标题生成等信息性事件不进入生命周期。
		s.log.WithContext(ctx).Infof("webhook ignored: informational code=%d mapped=%s video_id=%s",
			event.StatusCode, po.MapProviderStatus(event.StatusCode), video.VideoID)
		return StatusEventResult{Success: true, Message: fmt.Sprintf("status code %d ignored", event.StatusCode)}, nil
	}
}

// applyProcessing 处理 queued / preview / encoding 事件，推进到 processing。
func (s *WebhookService) applyProcessing(ctx context.Context, video *po.Video, event StatusEvent) (StatusEventResult, error) {
	if video.Status == po.VideoStatusProcessing {
		return StatusEventResult{Success: true, Message: "already processing"}, nil
	}

	if _, err := s.repo.MarkProcessing(ctx, nil, video.VideoID); err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			// 并发事件已先一步推进，无需重试。
			return StatusEventResult{Success: true, Message: "already advanced"}, nil
		}
		return StatusEventResult{}, fmt.Errorf("mark processing: %w", err)
	}

	s.log.WithContext(ctx).Infof("webhook applied: video_id=%s -> processing code=%d", video.VideoID, event.StatusCode)
	return StatusEventResult{Success: true, Message: "status updated to processing"}, nil
}

// applyCompletion 处理 finished / resolution-finished 事件。
// 元数据拉取失败时整体按失败处理：无法播放的 ready 比 failed 更糟。
func (s *WebhookService) applyCompletion(ctx context.Context, video *po.Video, event StatusEvent) (StatusEventResult, error) {
	meta, err := s.gateway.FetchVideoMetadata(ctx, video.ProviderGUID)
	if err != nil {
		s.log.WithContext(ctx).Errorf("metadata fetch failed on completion: video_id=%s err=%v", video.VideoID, err)
		return s.markFailed(ctx, video, "failed to retrieve video metadata after encoding")
	}

	media := po.ReadyMedia{
		DurationSeconds: meta.LengthSeconds,
		Width:           meta.Width,
		Height:          meta.Height,
		FrameRate:       meta.FrameRate,
		ThumbnailURL:    s.gateway.ThumbnailURL(video.ProviderGUID, meta.ThumbnailFileName),
		PlaybackURL:     s.gateway.PlaybackURL(video.ProviderGUID),
	}

	var ready *po.Video
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		updated, repoErr := s.repo.MarkReady(txCtx, sess, video.VideoID, media)
		if repoErr != nil {
			return repoErr
		}
		ready = updated

		readyEvent, buildErr := events.NewVideoReadyEvent(updated, media, uuid.New(), updated.UpdatedAt)
		if buildErr != nil {
			return fmt.Errorf("build video ready event: %w", buildErr)
		}
		return enqueueDomainEvent(txCtx, sess, s.outbox, readyEvent)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			return StatusEventResult{Success: true, Message: "video already in terminal state"}, nil
		}
		return StatusEventResult{}, fmt.Errorf("mark ready: %w", err)
	}

	s.log.WithContext(ctx).Infof("webhook applied: video_id=%s -> ready code=%d duration=%d", ready.VideoID, event.StatusCode, media.DurationSeconds)
	return StatusEventResult{Success: true, Message: "status updated to ready"}, nil
}

// applyFailure 处理 failed / presigned-upload-failed 事件。
// 元数据拉取仅用于提取诊断信息，拉取失败不升级，使用兜底文案。
func (s *WebhookService) applyFailure(ctx context.Context, video *po.Video, event StatusEvent) (StatusEventResult, error) {
	message := genericProcessingFailure
	if meta, err := s.gateway.FetchVideoMetadata(ctx, video.ProviderGUID); err != nil {
		s.log.WithContext(ctx).Warnf("diagnostic metadata fetch failed: video_id=%s err=%v", video.VideoID, err)
	} else if diag := firstNonEmpty(meta.TranscodingMessages); diag != "" {
		message = diag
	}

	return s.markFailed(ctx, video, message)
}

// markFailed 推进到 failed 并在同一事务内写入 video.failed 事件。
func (s *WebhookService) markFailed(ctx context.Context, video *po.Video, message string) (StatusEventResult, error) {
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		updated, repoErr := s.repo.MarkFailed(txCtx, sess, video.VideoID, message)
		if repoErr != nil {
			return repoErr
		}

		failedEvent, buildErr := events.NewVideoFailedEvent(updated, message, uuid.New(), updated.UpdatedAt)
		if buildErr != nil {
			return fmt.Errorf("build video failed event: %w", buildErr)
		}
		return enqueueDomainEvent(txCtx, sess, s.outbox, failedEvent)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			return StatusEventResult{Success: true, Message: "video already in terminal state"}, nil
		}
		return StatusEventResult{}, fmt.Errorf("mark failed: %w", err)
	}

	s.log.WithContext(ctx).Infof("webhook applied: video_id=%s -> failed reason=%s", video.VideoID, message)
	return StatusEventResult{Success: true, Message: "status updated to failed"}, nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
