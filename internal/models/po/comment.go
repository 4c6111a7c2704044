package po

import (
	"time"

	"github.com/google/uuid"
)

// Comment 表示 review.comments 表的数据库实体。
// 评论使用软删除（保留墓碑、清空正文），与视频的硬删除形成对照。
type Comment struct {
	CommentID       uuid.UUID   `db:"comment_id"`       // 主键（UUID v4）
	VideoID         uuid.UUID   `db:"video_id"`         // 所属视频
	ProjectID       uuid.UUID   `db:"project_id"`       // 冗余项目 ID，便于计数与鉴权
	AuthorID        uuid.UUID   `db:"author_id"`        // 评论作者
	ParentID        *uuid.UUID  `db:"parent_id"`        // 父评论（线程回复，须同视频）
	Body            string      `db:"body"`             // 正文，软删除后清空
	TimecodeSeconds *float64    `db:"timecode_seconds"` // 时间码（秒，可选，非负）
	Mentions        []uuid.UUID `db:"mentions"`         // 被 @ 用户列表（uuid[]）
	DeletedAt       *time.Time  `db:"deleted_at"`       // 软删除时间戳
	CreatedAt       time.Time   `db:"created_at"`       // 创建时间
	UpdatedAt       time.Time   `db:"updated_at"`       // 最近更新时间
}

// Deleted 判断评论是否已被软删除。
func (c *Comment) Deleted() bool {
	return c != nil && c.DeletedAt != nil
}
