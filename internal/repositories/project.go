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

const projectColumns = `
	project_id, owner_id, name, description, provider_collection_id,
	video_count, comment_count, created_at, updated_at
`

// ProjectRepository 提供 review.projects 表的数据访问能力。
type ProjectRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewProjectRepository 构造 ProjectRepository。
func NewProjectRepository(pool *pgxpool.Pool, logger log.Logger) *ProjectRepository {
	return &ProjectRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Create 创建项目记录。
func (r *ProjectRepository) Create(ctx context.Context, sess txmanager.Session, p *po.Project) (*po.Project, error) {
	query := `
		INSERT INTO review.projects (
			project_id, owner_id, name, description, provider_collection_id
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING video_count, comment_count, created_at, updated_at
	`

	err := querierFor(r.pool, sess).QueryRow(ctx, query,
		p.ProjectID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.ProviderCollectionID,
	).Scan(&p.VideoCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Create project failed: %v", err)
		return nil, fmt.Errorf("insert project: %w", err)
	}

	r.log.WithContext(ctx).Infof("Created project: project_id=%s", p.ProjectID)
	return p, nil
}

// FindByID 根据 project_id 查询项目。
// 查询不到时返回 ErrProjectNotFound。
func (r *ProjectRepository) FindByID(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) (*po.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM review.projects WHERE project_id = $1`

	p, err := scanProject(querierFor(r.pool, sess).QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByID project failed: %v", err)
		return nil, fmt.Errorf("query project by id: %w", err)
	}
	return p, nil
}

// Update 更新项目基本信息，nil 字段保持原值不变。
// 查询不到时返回 ErrProjectNotFound。
func (r *ProjectRepository) Update(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, name, description *string) (*po.Project, error) {
	query := `
		UPDATE review.projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at = now()
		WHERE project_id = $1
		RETURNING ` + projectColumns

	p, err := scanProject(querierFor(r.pool, sess).QueryRow(ctx, query, projectID, name, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		r.log.WithContext(ctx).Errorf("Update project failed: %v", err)
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete 删除项目记录，成员行由外键级联清理。
func (r *ProjectRepository) Delete(ctx context.Context, sess txmanager.Session, projectID uuid.UUID) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx, `
		DELETE FROM review.projects WHERE project_id = $1
	`, projectID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("Delete project failed: %v", err)
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	r.log.WithContext(ctx).Infof("Deleted project: project_id=%s", projectID)
	return nil
}

// SetProviderCollection 补写服务商集合 ID（best-effort 创建成功后）。
func (r *ProjectRepository) SetProviderCollection(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, collectionID string) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx, `
		UPDATE review.projects
		SET provider_collection_id = $2, updated_at = now()
		WHERE project_id = $1
	`, projectID, collectionID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("SetProviderCollection failed: %v", err)
		return fmt.Errorf("set provider collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// AdjustVideoCount 调整项目的视频计数，GREATEST 钳位保证不出现负数。
func (r *ProjectRepository) AdjustVideoCount(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, delta int32) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx, `
		UPDATE review.projects
		SET video_count = GREATEST(video_count + $2, 0), updated_at = now()
		WHERE project_id = $1
	`, projectID, delta)
	if err != nil {
		r.log.WithContext(ctx).Errorf("AdjustVideoCount failed: %v", err)
		return fmt.Errorf("adjust video count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// AdjustCommentCount 调整项目的评论计数，GREATEST 钳位保证不出现负数。
func (r *ProjectRepository) AdjustCommentCount(ctx context.Context, sess txmanager.Session, projectID uuid.UUID, delta int32) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx, `
		UPDATE review.projects
		SET comment_count = GREATEST(comment_count + $2, 0), updated_at = now()
		WHERE project_id = $1
	`, projectID, delta)
	if err != nil {
		r.log.WithContext(ctx).Errorf("AdjustCommentCount failed: %v", err)
		return fmt.Errorf("adjust comment count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ListByMember 查询用户可见的项目（所有者或成员），按创建时间倒序。
func (r *ProjectRepository) ListByMember(ctx context.Context, userID uuid.UUID, limit int) ([]*po.Project, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + projectColumns + `
		FROM review.projects p
		WHERE p.owner_id = $1
		   OR EXISTS (
				SELECT 1 FROM review.project_members m
				WHERE m.project_id = p.project_id AND m.user_id = $1
		   )
		ORDER BY p.created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByMember failed: %v", err)
		return nil, fmt.Errorf("query projects by member: %w", err)
	}
	defer rows.Close()

	var projects []*po.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			r.log.WithContext(ctx).Errorf("Scan project row failed: %v", err)
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*po.Project, error) {
	var p po.Project
	err := row.Scan(
		&p.ProjectID, &p.OwnerID, &p.Name, &p.Description, &p.ProviderCollectionID,
		&p.VideoCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
