// Package vo 定义面向接口层的视图对象（View Objects），由 Service 层组装并返回。
// VO 对象只携带可对外暴露的字段，使用 JSON 标签与 HTTP 响应保持一致。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
)

// VideoDetail 表示视频详情视图。
type VideoDetail struct {
	VideoID         uuid.UUID  `json:"video_id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	UploaderID      uuid.UUID  `json:"uploader_id"`
	ProviderGUID    string     `json:"provider_guid"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	Width           *int32     `json:"width,omitempty"`
	Height          *int32     `json:"height,omitempty"`
	FrameRate       *float64   `json:"frame_rate,omitempty"`
	ThumbnailURL    *string    `json:"thumbnail_url,omitempty"`
	PlaybackURL     *string    `json:"playback_url,omitempty"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	PreviousVersion *uuid.UUID `json:"previous_version_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewVideoDetail 将 PO 转换为详情视图，指针字段做防御性拷贝。
func NewVideoDetail(video *po.Video) *VideoDetail {
	if video == nil {
		return nil
	}
	detail := &VideoDetail{
		VideoID:      video.VideoID,
		ProjectID:    video.ProjectID,
		UploaderID:   video.UploaderID,
		ProviderGUID: video.ProviderGUID,
		Title:        video.Title,
		Status:       string(video.Status),
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}
	detail.DurationSeconds = copyInt64(video.DurationSeconds)
	detail.Width = copyInt32(video.Width)
	detail.Height = copyInt32(video.Height)
	detail.FrameRate = copyFloat64(video.FrameRate)
	detail.ThumbnailURL = copyString(video.ThumbnailURL)
	detail.PlaybackURL = copyString(video.PlaybackURL)
	detail.ErrorMessage = copyString(video.ErrorMessage)
	detail.PreviousVersion = copyUUID(video.PreviousVersionID)
	return detail
}

// VideoList 表示项目内视频列表视图。
type VideoList struct {
	Items []*VideoDetail `json:"items"`
	Total int            `json:"total"`
}

// NewVideoList 将 PO 切片转换为列表视图。
func NewVideoList(videos []*po.Video) *VideoList {
	items := make([]*VideoDetail, 0, len(videos))
	for _, v := range videos {
		if detail := NewVideoDetail(v); detail != nil {
			items = append(items, detail)
		}
	}
	return &VideoList{Items: items, Total: len(items)}
}

// DeleteResult 表示批量删除的结果视图。
// 单个删除失败即报错；批量删除尽力而为，逐项记录失败原因。
type DeleteResult struct {
	Deleted []uuid.UUID    `json:"deleted"`
	Failed  []DeleteFailed `json:"failed,omitempty"`
}

// DeleteFailed 记录批量删除中单个视频的失败信息。
type DeleteFailed struct {
	VideoID uuid.UUID `json:"video_id"`
	Reason  string    `json:"reason"`
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt32(v *int32) *int32 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyFloat64(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
