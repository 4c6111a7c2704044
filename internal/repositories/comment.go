package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `
	comment_id, video_id, project_id, author_id, parent_id,
	body, timecode_seconds, mentions, deleted_at, created_at, updated_at
`

// CommentRepository 提供 review.comments 表的数据访问能力。
// mentions 列为 uuid[]，统一经 text[] 编解码以避免驱动对 UUID 数组的特殊要求。
type CommentRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewCommentRepository 构造 CommentRepository。
func NewCommentRepository(pool *pgxpool.Pool, logger log.Logger) *CommentRepository {
	return &CommentRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Create 创建评论记录。
func (r *CommentRepository) Create(ctx context.Context, sess txmanager.Session, c *po.Comment) (*po.Comment, error) {
	query := `
		INSERT INTO review.comments (
			comment_id, video_id, project_id, author_id, parent_id,
			body, timecode_seconds, mentions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid[])
		RETURNING created_at, updated_at
	`

	err := querierFor(r.pool, sess).QueryRow(ctx, query,
		c.CommentID,
		c.VideoID,
		c.ProjectID,
		c.AuthorID,
		c.ParentID,
		c.Body,
		c.TimecodeSeconds,
		uuidsToStrings(c.Mentions),
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Create comment failed: %v", err)
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	r.log.WithContext(ctx).Infof("Created comment: comment_id=%s video_id=%s", c.CommentID, c.VideoID)
	return c, nil
}

// FindByID 根据 comment_id 查询评论。
// 查询不到时返回 ErrCommentNotFound。
func (r *CommentRepository) FindByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM review.comments WHERE comment_id = $1`

	c, err := scanComment(querierFor(r.pool, sess).QueryRow(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByID comment failed: %v", err)
		return nil, fmt.Errorf("query comment by id: %w", err)
	}
	return c, nil
}

// SoftDelete 对评论做软删除：保留墓碑、清空正文与 @ 列表。
// 已删除的评论不再匹配 WHERE 条件，返回 ErrStaleTransition 供上层按幂等处理。
func (r *CommentRepository) SoftDelete(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error) {
	query := `
		UPDATE review.comments
		SET body = '', mentions = '{}'::uuid[], deleted_at = now(), updated_at = now()
		WHERE comment_id = $1 AND deleted_at IS NULL
		RETURNING ` + commentColumns

	c, err := scanComment(querierFor(r.pool, sess).QueryRow(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		r.log.WithContext(ctx).Errorf("SoftDelete comment failed: %v", err)
		return nil, fmt.Errorf("soft delete comment: %w", err)
	}
	r.log.WithContext(ctx).Infof("Deleted comment: comment_id=%s", commentID)
	return c, nil
}

// ListByVideo 查询视频下的评论（含墓碑），按创建时间正序以保持线程顺序。
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID uuid.UUID, limit int) ([]*po.Comment, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `SELECT ` + commentColumns + `
		FROM review.comments
		WHERE video_id = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, videoID, limit)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByVideo comments failed: %v", err)
		return nil, fmt.Errorf("query comments by video: %w", err)
	}
	defer rows.Close()

	var comments []*po.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			r.log.WithContext(ctx).Errorf("Scan comment row failed: %v", err)
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	return comments, nil
}

func scanComment(row pgx.Row) (*po.Comment, error) {
	var (
		c        po.Comment
		mentions []string
	)
	err := row.Scan(
		&c.CommentID, &c.VideoID, &c.ProjectID, &c.AuthorID, &c.ParentID,
		&c.Body, &c.TimecodeSeconds, &mentions, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := stringsToUUIDs(mentions)
	if err != nil {
		return nil, fmt.Errorf("parse mentions: %w", err)
	}
	c.Mentions = parsed
	return &c, nil
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func stringsToUUIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
