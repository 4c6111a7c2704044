package dto

import (
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/google/uuid"
)

// CreateCommentRequest 是评论创建请求体。
type CreateCommentRequest struct {
	Body            string   `json:"body"`
	TimecodeSeconds *float64 `json:"timecode_seconds,omitempty"`
	ParentID        *string  `json:"parent_id,omitempty"`
	Mentions        []string `json:"mentions,omitempty"`
}

// ToCreateCommentInput 转换为服务层输入。
func (r CreateCommentRequest) ToCreateCommentInput(videoID, userID uuid.UUID) (services.CreateCommentInput, error) {
	parentID, err := ParseOptionalUUID(r.ParentID, "parent_id")
	if err != nil {
		return services.CreateCommentInput{}, err
	}
	mentions, err := ParseUUIDList(r.Mentions, "mentions")
	if err != nil {
		return services.CreateCommentInput{}, err
	}
	return services.CreateCommentInput{
		VideoID:         videoID,
		UserID:          userID,
		Body:            r.Body,
		TimecodeSeconds: r.TimecodeSeconds,
		ParentID:        parentID,
		Mentions:        mentions,
	}, nil
}
