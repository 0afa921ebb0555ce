package repository

import (
	"context"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUuids 按 UUID 列表查找用户
func (r *userRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	var users []model.UserInfo
	if len(uuids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// ListUuidsAfter 键集分页：uuid > after ORDER BY uuid LIMIT limit
// 不依赖 OFFSET，任意游标都可以重新开始
func (r *userRepository) ListUuidsAfter(ctx context.Context, after string, limit int) ([]string, error) {
	var uuids []string
	err := r.db.WithContext(ctx).Model(&model.UserInfo{}).
		Where("uuid > ?", after).
		Order("uuid ASC").
		Limit(limit).
		Pluck("uuid", &uuids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分页查询用户 after=%s", after)
	}
	return uuids, nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}
