package po

import (
	"time"

	"github.com/google/uuid"
)

// ProjectRole 表示成员在项目内的角色。
type ProjectRole string

// 角色常量定义。owner 不落 members 表，由 projects.owner_id 表达。
const (
	RoleEditor   ProjectRole = "editor"   // 可上传、删除、评论
	RoleReviewer ProjectRole = "reviewer" // 可评论
	RoleViewer   ProjectRole = "viewer"   // 只读
)

// Valid 判断角色取值是否合法。
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleEditor, RoleReviewer, RoleViewer:
		return true
	default:
		return false
	}
}

// CanUpload 判断角色是否具备上传能力。
func (r ProjectRole) CanUpload() bool { return r == RoleEditor }

// CanDelete 判断角色是否具备删除能力。
func (r ProjectRole) CanDelete() bool { return r == RoleEditor }

// CanComment 判断角色是否具备评论能力。
func (r ProjectRole) CanComment() bool { return r == RoleEditor || r == RoleReviewer }

// Project 表示 review.projects 表的数据库实体。
// video_count / comment_count 为展示用聚合计数，由创建/删除路径维护，钳位到 0。
type Project struct {
	ProjectID            uuid.UUID `db:"project_id"`             // 主键（UUID v4）
	OwnerID              uuid.UUID `db:"owner_id"`               // 项目所有者
	Name                 string    `db:"name"`                   // 项目名称（必填）
	Description          *string   `db:"description"`            // 项目描述（可选）
	ProviderCollectionID *string   `db:"provider_collection_id"` // 服务商集合 ID（best-effort 创建）
	VideoCount           int32     `db:"video_count"`            // 未删除视频数
	CommentCount         int32     `db:"comment_count"`          // 未删除评论数
	CreatedAt            time.Time `db:"created_at"`             // 创建时间
	UpdatedAt            time.Time `db:"updated_at"`             // 最近更新时间
}

// ProjectMember 表示 review.project_members 表的数据库实体。
type ProjectMember struct {
	ProjectID uuid.UUID   `db:"project_id"` // 所属项目
	UserID    uuid.UUID   `db:"user_id"`    // 成员用户 ID
	Role      ProjectRole `db:"role"`       // 项目内角色
	CreatedAt time.Time   `db:"created_at"` // 加入时间
}
