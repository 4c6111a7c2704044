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

// MemberRepository 提供 review.project_members 表的数据访问能力。
type MemberRepository struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

// NewMemberRepository 构造 MemberRepository。
func NewMemberRepository(pool *pgxpool.Pool, logger log.Logger) *MemberRepository {
	return &MemberRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Upsert 新增或更新项目成员角色。
// 重复添加同一用户时覆盖角色，保证幂等。
func (r *MemberRepository) Upsert(ctx context.Context, sess txmanager.Session, m *po.ProjectMember) (*po.ProjectMember, error) {
	query := `
		INSERT INTO review.project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id)
		DO UPDATE SET role = EXCLUDED.role
		RETURNING created_at
	`

	err := querierFor(r.pool, sess).QueryRow(ctx, query,
		m.ProjectID, m.UserID, m.Role,
	).Scan(&m.CreatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Upsert member failed: %v", err)
		return nil, fmt.Errorf("upsert project member: %w", err)
	}

	r.log.WithContext(ctx).Infof("Upserted member: project_id=%s user_id=%s role=%s", m.ProjectID, m.UserID, m.Role)
	return m, nil
}

// Remove 移除项目成员。
// 查询不到时返回 ErrMemberNotFound。
func (r *MemberRepository) Remove(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx, `
		DELETE FROM review.project_members
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("Remove member failed: %v", err)
		return fmt.Errorf("remove project member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Find 查询指定项目成员。
// 查询不到时返回 ErrMemberNotFound，上层据此拒绝非成员访问。
func (r *MemberRepository) Find(ctx context.Context, sess txmanager.Session, projectID, userID uuid.UUID) (*po.ProjectMember, error) {
	query := `
		SELECT project_id, user_id, role, created_at
		FROM review.project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var m po.ProjectMember
	err := querierFor(r.pool, sess).QueryRow(ctx, query, projectID, userID).Scan(
		&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		r.log.WithContext(ctx).Errorf("Find member failed: %v", err)
		return nil, fmt.Errorf("query project member: %w", err)
	}
	return &m, nil
}

// ListByProject 查询项目的全部成员，按加入时间正序。
func (r *MemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*po.ProjectMember, error) {
	query := `
		SELECT project_id, user_id, role, created_at
		FROM review.project_members
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByProject members failed: %v", err)
		return nil, fmt.Errorf("query project members: %w", err)
	}
	defer rows.Close()

	var members []*po.ProjectMember
	for rows.Next() {
		var m po.ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			r.log.WithContext(ctx).Errorf("Scan member row failed: %v", err)
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member rows: %w", err)
	}

	return members, nil
}
