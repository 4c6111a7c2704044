package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
)

// CommentView 表示评论视图。软删除的评论保留墓碑，正文置空并标记 deleted。
type CommentView struct {
	CommentID       uuid.UUID   `json:"comment_id"`
	VideoID         uuid.UUID   `json:"video_id"`
	AuthorID        uuid.UUID   `json:"author_id"`
	ParentID        *uuid.UUID  `json:"parent_id,omitempty"`
	Body            string      `json:"body"`
	TimecodeSeconds *float64    `json:"timecode_seconds,omitempty"`
	Mentions        []uuid.UUID `json:"mentions,omitempty"`
	Deleted         bool        `json:"deleted"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewCommentView 将 PO 转换为评论视图。
func NewCommentView(comment *po.Comment) *CommentView {
	if comment == nil {
		return nil
	}
	view := &CommentView{
		CommentID:       comment.CommentID,
		VideoID:         comment.VideoID,
		AuthorID:        comment.AuthorID,
		ParentID:        copyUUID(comment.ParentID),
		Body:            comment.Body,
		TimecodeSeconds: copyFloat64(comment.TimecodeSeconds),
		Deleted:         comment.Deleted(),
		CreatedAt:       comment.CreatedAt,
		UpdatedAt:       comment.UpdatedAt,
	}
	if len(comment.Mentions) > 0 {
		view.Mentions = make([]uuid.UUID, len(comment.Mentions))
		copy(view.Mentions, comment.Mentions)
	}
	if view.Deleted {
		view.Body = ""
		view.Mentions = nil
	}
	return view
}

// CommentList 表示视频下的评论列表视图，按创建时间升序。
type CommentList struct {
	Items []*CommentView `json:"items"`
	Total int            `json:"total"`
}

// NewCommentList 将 PO 切片转换为评论列表视图。
func NewCommentList(comments []*po.Comment) *CommentList {
	items := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		if view := NewCommentView(c); view != nil {
			items = append(items, view)
		}
	}
	return &CommentList{Items: items, Total: len(items)}
}
