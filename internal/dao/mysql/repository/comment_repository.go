// Package repository 提供数据访问层的具体实现
// 本文件实现 CommentRepository 接口
package repository

import (
	"context"
	"time"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建留言 Repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create 创建留言
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return wrapDBError(err, "创建留言")
	}
	return nil
}

// FindById 根据 ID 查找留言
func (r *commentRepository) FindById(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询留言 id=%d", id)
	}
	return &comment, nil
}

// FindByIdForUpdate 根据 ID 查找留言并加行锁
func (r *commentRepository) FindByIdForUpdate(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&comment, id).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "锁定留言 id=%d", id)
	}
	return &comment, nil
}

// FindByIds 批量查找留言
func (r *commentRepository) FindByIds(ctx context.Context, ids []uint64) ([]model.Comment, error) {
	var comments []model.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, wrapDBError(err, "批量查询留言")
	}
	return comments, nil
}

// ListByRecipient 分页查询留言板，最新在前
func (r *commentRepository) ListByRecipient(ctx context.Context, recipientId string, offset, limit int) ([]model.Comment, int64, error) {
	var comments []model.Comment
	var total int64

	// 先查询总数
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("recipient_id = ?", recipientId).Count(&total).Error; err != nil {
		return nil, 0, wrapDBErrorf(err, "查询留言总数 recipient=%s", recipientId)
	}

	// 再分页查询
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientId).
		Order("id DESC").
		Offset(offset).
		Limit(clampLimit(limit, 100)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, wrapDBErrorf(err, "分页查询留言 recipient=%s", recipientId)
	}
	return comments, total, nil
}

// ListByAuthorAfter 批量清理使用的键集分页
// 条件 id > afterId 保证游标严格递增，已删除的行不会被重新读到
func (r *commentRepository) ListByAuthorAfter(ctx context.Context, authorId string, since time.Time, afterId uint64, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND created_at >= ? AND id > ?", authorId, since, afterId).
		Order("id ASC").
		Limit(clampLimit(limit, 1000)).
		Find(&comments).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分页查询作者留言 author=%s after=%d", authorId, afterId)
	}
	return comments, nil
}

// Delete 硬删除留言
func (r *commentRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if result.Error != nil {
		return 0, wrapDBErrorf(result.Error, "删除留言 id=%d", id)
	}
	return result.RowsAffected, nil
}

// DetachReplies 被回复的留言删除后，回复保留为顶层留言
func (r *commentRepository) DetachReplies(ctx context.Context, parentId uint64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_id = ?", parentId).
		Update("parent_id", nil)
	if result.Error != nil {
		return 0, wrapDBErrorf(result.Error, "解除回复关系 parent=%d", parentId)
	}
	return result.RowsAffected, nil
}
