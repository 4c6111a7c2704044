package dto

import (
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/google/uuid"
)

// CreateProjectRequest 是项目创建请求体。
type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ToCreateProjectInput 转换为服务层输入。
func (r CreateProjectRequest) ToCreateProjectInput(ownerID uuid.UUID) services.CreateProjectInput {
	return services.CreateProjectInput{
		OwnerID:     ownerID,
		Name:        r.Name,
		Description: r.Description,
	}
}

// UpdateProjectRequest 是项目更新请求体，缺省字段保持原值。
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ToUpdateProjectInput 转换为服务层输入。
func (r UpdateProjectRequest) ToUpdateProjectInput(callerID, projectID uuid.UUID) services.UpdateProjectInput {
	return services.UpdateProjectInput{
		CallerID:    callerID,
		ProjectID:   projectID,
		Name:        r.Name,
		Description: r.Description,
	}
}

// AddMemberRequest 是成员添加/更新请求体。
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
