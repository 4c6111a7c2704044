// Package events 提供领域事件构造与元数据辅助函数，统一事件命名与属性。
// 事件载荷为 JSON，经 Outbox 表进入 Pub/Sub。
package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
)

// Kind 表示领域事件类型。
type Kind int

// 事件类型枚举。
const (
	KindUnknown Kind = iota
	KindVideoCreated
	KindVideoReady
	KindVideoFailed
	KindVideoDeleted
	KindCommentCreated
	KindCommentMentioned
)

// 聚合类型常量。
const (
	AggregateTypeVideo   = "video"
	AggregateTypeComment = "comment"
)

// 事件构造的基础校验错误。
var (
	ErrNilVideo       = errors.New("event builder: video is nil")
	ErrNilComment     = errors.New("event builder: comment is nil")
	ErrInvalidEventID = errors.New("event builder: event id is required")
)

// DomainEvent 是写入 Outbox 的统一事件信封。
type DomainEvent struct {
	EventID       uuid.UUID
	Kind          Kind
	AggregateID   uuid.UUID
	AggregateType string
	Version       int64
	OccurredAt    time.Time
	Payload       any
}

// FormatEventType 将枚举映射为语义化字符串（如 video.created）。
func FormatEventType(kind Kind) string {
	switch kind {
	case KindVideoCreated:
		return "video.created"
	case KindVideoReady:
		return "video.ready"
	case KindVideoFailed:
		return "video.failed"
	case KindVideoDeleted:
		return "video.deleted"
	case KindCommentCreated:
		return "comment.created"
	case KindCommentMentioned:
		return "comment.mentioned"
	default:
		return "event.unknown"
	}
}

// MarshalPayload 将事件载荷编码为 JSON，供 outbox.payload 字段使用。
func MarshalPayload(event *DomainEvent) ([]byte, error) {
	if event == nil {
		return nil, errors.New("event builder: event is nil")
	}
	return json.Marshal(event.Payload)
}

// VersionFromTime 根据时间戳计算聚合版本号，采用 UTC 微秒时间，保证单调递增。
func VersionFromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMicro()
}

// VideoCreated 是 video.created 的载荷。
type VideoCreated struct {
	VideoID      uuid.UUID `json:"video_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	UploaderID   uuid.UUID `json:"uploader_id"`
	ProviderGUID string    `json:"provider_guid"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
}

// VideoReady 是 video.ready 的载荷。
type VideoReady struct {
	VideoID         uuid.UUID `json:"video_id"`
	ProjectID       uuid.UUID `json:"project_id"`
	DurationSeconds int64     `json:"duration_seconds"`
	Width           int32     `json:"width"`
	Height          int32     `json:"height"`
	FrameRate       float64   `json:"frame_rate"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	PlaybackURL     string    `json:"playback_url"`
}

// VideoFailed 是 video.failed 的载荷。
type VideoFailed struct {
	VideoID      uuid.UUID `json:"video_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	ErrorMessage string    `json:"error_message"`
}

// VideoDeleted 是 video.deleted 的载荷。
type VideoDeleted struct {
	VideoID   uuid.UUID `json:"video_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Reason    *string   `json:"reason,omitempty"`
}

// CommentCreated 是 comment.created 的载荷。
type CommentCreated struct {
	CommentID       uuid.UUID  `json:"comment_id"`
	VideoID         uuid.UUID  `json:"video_id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	AuthorID        uuid.UUID  `json:"author_id"`
	ParentID        *uuid.UUID `json:"parent_id,omitempty"`
	TimecodeSeconds *float64   `json:"timecode_seconds,omitempty"`
}

// CommentMentioned 是 comment.mentioned 的载荷，一名被 @ 用户一条事件。
type CommentMentioned struct {
	CommentID   uuid.UUID `json:"comment_id"`
	VideoID     uuid.UUID `json:"video_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	MentionedID uuid.UUID `json:"mentioned_id"`
}

// NewVideoCreatedEvent 基于新建实体构建 video.created 事件。
func NewVideoCreatedEvent(video *po.Video, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	if video == nil {
		return nil, ErrNilVideo
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, video.CreatedAt)

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindVideoCreated,
		AggregateID:   video.VideoID,
		AggregateType: AggregateTypeVideo,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &VideoCreated{
			VideoID:      video.VideoID,
			ProjectID:    video.ProjectID,
			UploaderID:   video.UploaderID,
			ProviderGUID: video.ProviderGUID,
			Title:        video.Title,
			Status:       string(video.Status),
		},
	}, nil
}

// NewVideoReadyEvent 基于进入 ready 的实体构建 video.ready 事件。
func NewVideoReadyEvent(video *po.Video, media po.ReadyMedia, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	if video == nil {
		return nil, ErrNilVideo
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, video.UpdatedAt)

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindVideoReady,
		AggregateID:   video.VideoID,
		AggregateType: AggregateTypeVideo,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &VideoReady{
			VideoID:         video.VideoID,
			ProjectID:       video.ProjectID,
			DurationSeconds: media.DurationSeconds,
			Width:           media.Width,
			Height:          media.Height,
			FrameRate:       media.FrameRate,
			ThumbnailURL:    media.ThumbnailURL,
			PlaybackURL:     media.PlaybackURL,
		},
	}, nil
}

// NewVideoFailedEvent 基于进入 failed 的实体构建 video.failed 事件。
func NewVideoFailedEvent(video *po.Video, message string, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	if video == nil {
		return nil, ErrNilVideo
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, video.UpdatedAt)

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindVideoFailed,
		AggregateID:   video.VideoID,
		AggregateType: AggregateTypeVideo,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &VideoFailed{
			VideoID:      video.VideoID,
			ProjectID:    video.ProjectID,
			ErrorMessage: message,
		},
	}, nil
}

// NewVideoDeletedEvent 基于被删除实体构建 video.deleted 事件。
func NewVideoDeletedEvent(video *po.Video, eventID uuid.UUID, occurredAt time.Time, reason *string) (*DomainEvent, error) {
	if video == nil {
		return nil, ErrNilVideo
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, time.Time{})

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindVideoDeleted,
		AggregateID:   video.VideoID,
		AggregateType: AggregateTypeVideo,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &VideoDeleted{
			VideoID:   video.VideoID,
			ProjectID: video.ProjectID,
			Reason:    reason,
		},
	}, nil
}

// NewCommentCreatedEvent 基于新建评论构建 comment.created 事件。
func NewCommentCreatedEvent(comment *po.Comment, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	if comment == nil {
		return nil, ErrNilComment
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, comment.CreatedAt)

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindCommentCreated,
		AggregateID:   comment.CommentID,
		AggregateType: AggregateTypeComment,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &CommentCreated{
			CommentID:       comment.CommentID,
			VideoID:         comment.VideoID,
			ProjectID:       comment.ProjectID,
			AuthorID:        comment.AuthorID,
			ParentID:        comment.ParentID,
			TimecodeSeconds: comment.TimecodeSeconds,
		},
	}, nil
}

// NewCommentMentionedEvent 为单个被 @ 用户构建 comment.mentioned 事件。
func NewCommentMentionedEvent(comment *po.Comment, mentioned uuid.UUID, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	if comment == nil {
		return nil, ErrNilComment
	}
	if eventID == uuid.Nil || mentioned == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	occurredAt = normalizeOccurredAt(occurredAt, comment.CreatedAt)

	return &DomainEvent{
		EventID:       eventID,
		Kind:          KindCommentMentioned,
		AggregateID:   comment.CommentID,
		AggregateType: AggregateTypeComment,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt,
		Payload: &CommentMentioned{
			CommentID:   comment.CommentID,
			VideoID:     comment.VideoID,
			ProjectID:   comment.ProjectID,
			AuthorID:    comment.AuthorID,
			MentionedID: mentioned,
		},
	}, nil
}

func normalizeOccurredAt(occurredAt, fallback time.Time) time.Time {
	if occurredAt.IsZero() {
		occurredAt = fallback
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return occurredAt.UTC()
}
