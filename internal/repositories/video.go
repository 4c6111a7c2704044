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

const videoColumns = `
	video_id, project_id, uploader_id, provider_guid, library_id,
	title, status, created_at, updated_at,
	duration_seconds, width, height, frame_rate, thumbnail_url, playback_url,
	error_message, previous_version_id
`

// VideoRepository 提供 review.videos 表的数据访问能力。
// 使用 pgxpool.Pool 进行数据库访问（Supabase PostgreSQL）。
type VideoRepository struct {
	pool *pgxpool.Pool // PostgreSQL 连接池
	log  *log.Helper   // 结构化日志辅助器
}

// NewVideoRepository 构造 VideoRepository。
// 通过 Wire 注入数据库连接池和 logger。
func NewVideoRepository(pool *pgxpool.Pool, logger log.Logger) *VideoRepository {
	return &VideoRepository{
		pool: pool,
		log:  log.NewHelper(logger),
	}
}

// Create 创建新视频记录（uploading 状态）。
// 使用 INSERT ... RETURNING 获取数据库生成的时间戳。
func (r *VideoRepository) Create(ctx context.Context, sess txmanager.Session, v *po.Video) (*po.Video, error) {
	query := `
		INSERT INTO review.videos (
			video_id, project_id, uploader_id, provider_guid, library_id,
			title, status, previous_version_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := querierFor(r.pool, sess).QueryRow(ctx, query,
		v.VideoID,
		v.ProjectID,
		v.UploaderID,
		v.ProviderGUID,
		v.LibraryID,
		v.Title,
		v.Status,
		v.PreviousVersionID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)

	if err != nil {
		r.log.WithContext(ctx).Errorf("Create video failed: %v", err)
		return nil, fmt.Errorf("insert video: %w", err)
	}

	r.log.WithContext(ctx).Infof("Created video: video_id=%s provider_guid=%s", v.VideoID, v.ProviderGUID)
	return v, nil
}

// FindByID 根据 video_id 查询视频记录。
// 查询不到时返回 ErrVideoNotFound。
func (r *VideoRepository) FindByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM review.videos WHERE video_id = $1`

	v, err := scanVideo(querierFor(r.pool, sess).QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByID failed: %v", err)
		return nil, fmt.Errorf("query video by id: %w", err)
	}
	return v, nil
}

// FindByProviderGUID 根据服务商对象 ID 查询视频记录。
// Webhook 协调器以 provider_guid 为唯一检索键。
func (r *VideoRepository) FindByProviderGUID(ctx context.Context, sess txmanager.Session, guid string) (*po.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM review.videos WHERE provider_guid = $1`

	v, err := scanVideo(querierFor(r.pool, sess).QueryRow(ctx, query, guid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("FindByProviderGUID failed: %v", err)
		return nil, fmt.Errorf("query video by provider guid: %w", err)
	}
	return v, nil
}

// MarkProcessing 将 uploading 状态推进为 processing。
// WHERE 条件保证终态与已 processing 的记录不被改写；无可推进行时返回 ErrStaleTransition。
func (r *VideoRepository) MarkProcessing(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	query := `
		UPDATE review.videos
		SET status = $2, updated_at = now()
		WHERE video_id = $1 AND status = $3
		RETURNING ` + videoColumns

	v, err := scanVideo(querierFor(r.pool, sess).QueryRow(ctx, query,
		videoID, po.VideoStatusProcessing, po.VideoStatusUploading,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		r.log.WithContext(ctx).Errorf("MarkProcessing failed: %v", err)
		return nil, fmt.Errorf("mark video processing: %w", err)
	}
	return v, nil
}

// MarkReady 将视频推进为 ready，并原子补写全部媒体属性。
// 终态记录不会被改写；无可推进行时返回 ErrStaleTransition。
func (r *VideoRepository) MarkReady(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, media po.ReadyMedia) (*po.Video, error) {
	query := `
		UPDATE review.videos
		SET status = $2,
			duration_seconds = $3,
			width = $4,
			height = $5,
			frame_rate = $6,
			thumbnail_url = $7,
			playback_url = $8,
			error_message = NULL,
			updated_at = now()
		WHERE video_id = $1 AND status NOT IN ($9, $10)
		RETURNING ` + videoColumns

	v, err := scanVideo(querierFor(r.pool, sess).QueryRow(ctx, query,
		videoID, po.VideoStatusReady,
		media.DurationSeconds, media.Width, media.Height, media.FrameRate,
		media.ThumbnailURL, media.PlaybackURL,
		po.VideoStatusReady, po.VideoStatusFailed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		r.log.WithContext(ctx).Errorf("MarkReady failed: %v", err)
		return nil, fmt.Errorf("mark video ready: %w", err)
	}
	r.log.WithContext(ctx).Infof("Video ready: video_id=%s", videoID)
	return v, nil
}

// MarkFailed 将视频推进为 failed 并记录失败原因。
// 终态记录不会被改写；无可推进行时返回 ErrStaleTransition。
func (r *VideoRepository) MarkFailed(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, message string) (*po.Video, error) {
	query := `
		UPDATE review.videos
		SET status = $2, error_message = $3, updated_at = now()
		WHERE video_id = $1 AND status NOT IN ($4, $5)
		RETURNING ` + videoColumns

	v, err := scanVideo(querierFor(r.pool, sess).QueryRow(ctx, query,
		videoID, po.VideoStatusFailed, message,
		po.VideoStatusReady, po.VideoStatusFailed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleTransition
		}
		r.log.WithContext(ctx).Errorf("MarkFailed failed: %v", err)
		return nil, fmt.Errorf("mark video failed: %w", err)
	}
	r.log.WithContext(ctx).Infof("Video failed: video_id=%s reason=%s", videoID, message)
	return v, nil
}

// Delete 硬删除视频记录。
// 查询不到时返回 ErrVideoNotFound，便于上层区分幂等重试。
func (r *VideoRepository) Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) error {
	tag, err := querierFor(r.pool, sess).Exec(ctx,
		`DELETE FROM review.videos WHERE video_id = $1`, videoID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("Delete video failed: %v", err)
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	r.log.WithContext(ctx).Infof("Deleted video: video_id=%s", videoID)
	return nil
}

// ListByProject 查询项目下的视频列表，按创建时间倒序。
func (r *VideoRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*po.Video, error) {
	if limit <= 0 {
		limit = 100 // 默认限制
	}

	query := `SELECT ` + videoColumns + `
		FROM review.videos
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, projectID, limit)
	if err != nil {
		r.log.WithContext(ctx).Errorf("ListByProject failed: %v", err)
		return nil, fmt.Errorf("query videos by project: %w", err)
	}
	defer rows.Close()

	var videos []*po.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			r.log.WithContext(ctx).Errorf("Scan video row failed: %v", err)
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video rows: %w", err)
	}

	return videos, nil
}

func scanVideo(row pgx.Row) (*po.Video, error) {
	var v po.Video
	err := row.Scan(
		&v.VideoID, &v.ProjectID, &v.UploaderID, &v.ProviderGUID, &v.LibraryID,
		&v.Title, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		&v.DurationSeconds, &v.Width, &v.Height, &v.FrameRate, &v.ThumbnailURL, &v.PlaybackURL,
		&v.ErrorMessage, &v.PreviousVersionID,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
