// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// VideoStatus 表示视频的生命周期状态。
type VideoStatus string

// 视频状态常量定义。ready / failed 为终态，Webhook 协调器不会再修改。
const (
	VideoStatusUploading  VideoStatus = "uploading"  // 记录已创建，客户端直传进行中
	VideoStatusProcessing VideoStatus = "processing" // 服务商转码/处理中
	VideoStatusReady      VideoStatus = "ready"      // 转码完成，可播放
	VideoStatusFailed     VideoStatus = "failed"     // 处理失败（含元数据拉取失败）
)

// IsTerminal 判断状态是否为终态。
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusReady || s == VideoStatusFailed
}

// Video 表示 review.videos 表的数据库实体。
// 状态字段仅由 Webhook 协调器写入；媒体属性仅在进入 ready 时一次性补写。
type Video struct {
	VideoID      uuid.UUID   `db:"video_id"`       // 主键（UUID v4）
	ProjectID    uuid.UUID   `db:"project_id"`     // 所属项目（外键 review.projects）
	UploaderID   uuid.UUID   `db:"uploader_id"`    // 上传者用户 ID
	ProviderGUID string      `db:"provider_guid"`  // 服务商对象 ID，创建后不可变
	LibraryID    int64       `db:"library_id"`     // 服务商视频库 ID
	Title        string      `db:"title"`          // 视频标题（必填）
	Status       VideoStatus `db:"status"`         // 生命周期状态
	CreatedAt    time.Time   `db:"created_at"`     // 记录创建时间
	UpdatedAt    time.Time   `db:"updated_at"`     // 最近更新时间

	// 进入 ready 时原子补写的媒体属性
	DurationSeconds *int64   `db:"duration_seconds"` // 视频时长（秒）
	Width           *int32   `db:"width"`            // 主转码宽度
	Height          *int32   `db:"height"`           // 主转码高度
	FrameRate       *float64 `db:"frame_rate"`       // 帧率
	ThumbnailURL    *string  `db:"thumbnail_url"`    // 缩略图 URL（CDN 拼接）
	PlaybackURL     *string  `db:"playback_url"`     // 播放/嵌入 URL

	// 进入 failed 时补写
	ErrorMessage *string `db:"error_message"` // 失败原因（人类可读）

	// 版本链：指向被替换的上一版本，语义不在本服务内展开
	PreviousVersionID *uuid.UUID `db:"previous_version_id"`
}

// ReadyMedia 聚合进入 ready 状态时需要原子写入的媒体属性。
type ReadyMedia struct {
	DurationSeconds int64
	Width           int32
	Height          int32
	FrameRate       float64
	ThumbnailURL    string
	PlaybackURL     string
}

// ProviderVideoMetadata 表示从服务商拉取的权威媒体元数据。
type ProviderVideoMetadata struct {
	GUID                string
	StatusCode          int32
	LengthSeconds       int64
	Width               int32
	Height              int32
	FrameRate           float64
	ThumbnailFileName   string
	TranscodingMessages []string
}
