package repository

import (
	"context"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type checkpointRepository struct {
	db *gorm.DB
}

// NewCheckpointRepository 创建任务断点 Repository
func NewCheckpointRepository(db *gorm.DB) CheckpointRepository {
	return &checkpointRepository{db: db}
}

// Get 读取断点
func (r *checkpointRepository) Get(ctx context.Context, jobKey string) (*model.JobCheckpoint, error) {
	var cp model.JobCheckpoint
	if err := r.db.WithContext(ctx).First(&cp, "job_key = ?", jobKey).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询断点 key=%s", jobKey)
	}
	return &cp, nil
}

// Save 按 job_key upsert 断点
func (r *checkpointRepository) Save(ctx context.Context, cp *model.JobCheckpoint) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_id", "processed", "failed", "updated_at"}),
	}).Create(cp).Error
	if err != nil {
		return wrapDBErrorf(err, "保存断点 key=%s", cp.JobKey)
	}
	return nil
}

// Delete 删除断点
func (r *checkpointRepository) Delete(ctx context.Context, jobKey string) error {
	if err := r.db.WithContext(ctx).Where("job_key = ?", jobKey).Delete(&model.JobCheckpoint{}).Error; err != nil {
		return wrapDBErrorf(err, "删除断点 key=%s", jobKey)
	}
	return nil
}
