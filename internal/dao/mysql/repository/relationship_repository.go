// Package repository 提供数据访问层的具体实现
// 本文件实现 RelationshipRepository 接口，relationship 表是好友关系的唯一权威来源
package repository

import (
	"context"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository 创建好友关系 Repository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// FindByPair 查找无序用户对的关系行
func (r *relationshipRepository) FindByPair(ctx context.Context, a, b string) (*model.Relationship, error) {
	low, high := model.OrderedPair(a, b)
	var rel model.Relationship
	if err := r.db.WithContext(ctx).Where("user_low = ? AND user_high = ?", low, high).First(&rel).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询关系 pair=(%s,%s)", low, high)
	}
	return &rel, nil
}

// FindByPairForUpdate 加 SELECT ... FOR UPDATE 行锁，必须在事务内调用
func (r *relationshipRepository) FindByPairForUpdate(ctx context.Context, a, b string) (*model.Relationship, error) {
	low, high := model.OrderedPair(a, b)
	var rel model.Relationship
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_low = ? AND user_high = ?", low, high).
		First(&rel).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "锁定关系 pair=(%s,%s)", low, high)
	}
	return &rel, nil
}

// Create 创建关系行
// 同一用户对的并发插入由 uk_relationship_pair 唯一索引拦截
func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) error {
	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		return wrapDBErrorf(err, "创建关系 pair=(%s,%s)", rel.UserLow, rel.UserHigh)
	}
	return nil
}

// UpdateState 更新关系状态
func (r *relationshipRepository) UpdateState(ctx context.Context, id uint, state model.RelationState) error {
	err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("id = ?", id).
		Update("state", state).Error
	if err != nil {
		return wrapDBErrorf(err, "更新关系状态 id=%d", id)
	}
	return nil
}

// Delete 硬删除关系行
func (r *relationshipRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Relationship{}, id).Error; err != nil {
		return wrapDBErrorf(err, "删除关系 id=%d", id)
	}
	return nil
}

// ListByUser 查询用户参与的所有关系行，按创建时间升序
func (r *relationshipRepository) ListByUser(ctx context.Context, userId string) ([]model.Relationship, error) {
	var rels []model.Relationship
	err := r.db.WithContext(ctx).
		Where("user_low = ? OR user_high = ?", userId, userId).
		Order("created_at ASC, id ASC").
		Find(&rels).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询关系列表 user=%s", userId)
	}
	return rels, nil
}

// ListAcceptedCounterparts 查询用户所有好友ID
func (r *relationshipRepository) ListAcceptedCounterparts(ctx context.Context, userId string) ([]string, error) {
	var rels []model.Relationship
	err := r.db.WithContext(ctx).
		Select("user_low", "user_high").
		Where("(user_low = ? OR user_high = ?) AND state = ?", userId, userId, model.RelationAccepted).
		Find(&rels).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询好友 user=%s", userId)
	}
	friends := make([]string, 0, len(rels))
	for i := range rels {
		friends = append(friends, rels[i].Counterpart(userId))
	}
	return friends, nil
}
