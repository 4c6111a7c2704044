package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
)

// ProjectDetail 表示项目详情视图。
type ProjectDetail struct {
	ProjectID            uuid.UUID `json:"project_id"`
	OwnerID              uuid.UUID `json:"owner_id"`
	Name                 string    `json:"name"`
	Description          *string   `json:"description,omitempty"`
	ProviderCollectionID *string   `json:"provider_collection_id,omitempty"`
	VideoCount           int32     `json:"video_count"`
	CommentCount         int32     `json:"comment_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewProjectDetail 将 PO 转换为项目详情视图。
func NewProjectDetail(project *po.Project) *ProjectDetail {
	if project == nil {
		return nil
	}
	return &ProjectDetail{
		ProjectID:            project.ProjectID,
		OwnerID:              project.OwnerID,
		Name:                 project.Name,
		Description:          copyString(project.Description),
		ProviderCollectionID: copyString(project.ProviderCollectionID),
		VideoCount:           project.VideoCount,
		CommentCount:         project.CommentCount,
		CreatedAt:            project.CreatedAt,
		UpdatedAt:            project.UpdatedAt,
	}
}

// MemberView 表示项目成员视图。
type MemberView struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMemberView 将 PO 转换为成员视图。
func NewMemberView(member *po.ProjectMember) *MemberView {
	if member == nil {
		return nil
	}
	return &MemberView{
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      string(member.Role),
		CreatedAt: member.CreatedAt,
	}
}

// MemberList 表示项目成员列表视图。
type MemberList struct {
	Items []*MemberView `json:"items"`
	Total int           `json:"total"`
}

// NewMemberList 将 PO 切片转换为成员列表视图。
func NewMemberList(members []*po.ProjectMember) *MemberList {
	items := make([]*MemberView, 0, len(members))
	for _, m := range members {
		if view := NewMemberView(m); view != nil {
			items = append(items, view)
		}
	}
	return &MemberList{Items: items, Total: len(items)}
}
