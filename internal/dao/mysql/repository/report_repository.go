// Package repository 提供数据访问层的具体实现
// 本文件实现 ReportRepository 接口，处理留言举报相关的数据库操作
package repository

import (
	"context"
	"time"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建举报 Repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create 创建举报
func (r *reportRepository) Create(ctx context.Context, report *model.CommentReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return wrapDBError(err, "创建举报")
	}
	return nil
}

// FindById 根据 ID 查找举报
func (r *reportRepository) FindById(ctx context.Context, id uint64) (*model.CommentReport, error) {
	var report model.CommentReport
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询举报 id=%d", id)
	}
	return &report, nil
}

// FindByIdForUpdate 根据 ID 查找举报并加行锁
func (r *reportRepository) FindByIdForUpdate(ctx context.Context, id uint64) (*model.CommentReport, error) {
	var report model.CommentReport
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&report, id).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "锁定举报 id=%d", id)
	}
	return &report, nil
}

// HasPending 举报人对该留言是否已有待处理举报
func (r *reportRepository) HasPending(ctx context.Context, commentId uint64, reporterId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CommentReport{}).
		Where("comment_id = ? AND reporter_id = ? AND resolution = ?", commentId, reporterId, model.ResolutionPending).
		Count(&count).Error
	if err != nil {
		return false, wrapDBErrorf(err, "查询待处理举报 comment=%d reporter=%s", commentId, reporterId)
	}
	return count > 0, nil
}

// Resolve 处理单条待处理举报
// 条件中带 resolution=PENDING，重复处理时影响行数为 0
func (r *reportRepository) Resolve(ctx context.Context, id uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.CommentReport{}).
		Where("id = ? AND resolution = ?", id, model.ResolutionPending).
		Updates(map[string]interface{}{
			"resolution":  resolution,
			"resolved_by": by,
			"resolved_at": at,
		})
	if result.Error != nil {
		return 0, wrapDBErrorf(result.Error, "处理举报 id=%d", id)
	}
	return result.RowsAffected, nil
}

// ResolveAllPending 处理某留言下所有待处理举报
func (r *reportRepository) ResolveAllPending(ctx context.Context, commentId uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.CommentReport{}).
		Where("comment_id = ? AND resolution = ?", commentId, model.ResolutionPending).
		Updates(map[string]interface{}{
			"resolution":  resolution,
			"resolved_by": by,
			"resolved_at": at,
		})
	if result.Error != nil {
		return 0, wrapDBErrorf(result.Error, "批量处理举报 comment=%d", commentId)
	}
	return result.RowsAffected, nil
}

// ListPendingGrouped 按留言聚合待处理举报并分页
func (r *reportRepository) ListPendingGrouped(ctx context.Context, sort model.ReportSortKey, offset, limit int) ([]model.ReportedComment, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.CommentReport{}).
		Where("resolution = ?", model.ResolutionPending).
		Distinct("comment_id").
		Count(&total).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询被举报留言总数")
	}

	order := "report_count DESC, last_reported_at DESC, comment_id DESC"
	if sort == model.ReportSortDate {
		order = "last_reported_at DESC, comment_id DESC"
	}

	var rows []model.ReportedComment
	err = r.db.WithContext(ctx).Model(&model.CommentReport{}).
		Select("comment_id, COUNT(*) AS report_count, MIN(created_at) AS first_reported_at, MAX(created_at) AS last_reported_at").
		Where("resolution = ?", model.ResolutionPending).
		Group("comment_id").
		Order(order).
		Offset(offset).
		Limit(clampLimit(limit, 100)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "分页查询被举报留言")
	}
	return rows, total, nil
}

// ListPendingIds 查询若干留言下的待处理举报ID
func (r *reportRepository) ListPendingIds(ctx context.Context, commentIds []uint64) (map[uint64][]uint64, error) {
	result := make(map[uint64][]uint64, len(commentIds))
	if len(commentIds) == 0 {
		return result, nil
	}
	var reports []model.CommentReport
	err := r.db.WithContext(ctx).
		Select("id", "comment_id").
		Where("comment_id IN ? AND resolution = ?", commentIds, model.ResolutionPending).
		Order("id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, wrapDBError(err, "查询待处理举报ID")
	}
	for _, rep := range reports {
		result[rep.CommentId] = append(result[rep.CommentId], rep.ID)
	}
	return result, nil
}
