package dto

import (
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/google/uuid"
)

// CreateUploadRequest 是上传初始化请求体。
type CreateUploadRequest struct {
	Title             string  `json:"title"`
	PreviousVersionID *string `json:"previous_version_id,omitempty"`
}

// ToCreateUploadInput 转换为服务层输入。
func (r CreateUploadRequest) ToCreateUploadInput(projectID, userID uuid.UUID) (services.CreateUploadInput, error) {
	previous, err := ParseOptionalUUID(r.PreviousVersionID, "previous_version_id")
	if err != nil {
		return services.CreateUploadInput{}, err
	}
	return services.CreateUploadInput{
		ProjectID:         projectID,
		UserID:            userID,
		Title:             r.Title,
		PreviousVersionID: previous,
	}, nil
}

// BatchDeleteVideosRequest 是批量删除请求体。
type BatchDeleteVideosRequest struct {
	VideoIDs []string `json:"video_ids"`
}

// ToDeleteVideosInput 转换为服务层输入。
func (r BatchDeleteVideosRequest) ToDeleteVideosInput(userID uuid.UUID) (services.DeleteVideosInput, error) {
	ids, err := ParseUUIDList(r.VideoIDs, "video_ids")
	if err != nil {
		return services.DeleteVideosInput{}, err
	}
	return services.DeleteVideosInput{VideoIDs: ids, UserID: userID}, nil
}
