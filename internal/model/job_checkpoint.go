package model

import "time"

// JobCheckpoint 分页任务的断点
// 每处理完一页写一次，任务重跑时从 LastSeenId 之后继续
type JobCheckpoint struct {
	ID         uint      `gorm:"primaryKey"`
	JobKey     string    `gorm:"column:job_key;type:varchar(128);uniqueIndex;not null;comment:任务唯一键"`
	LastSeenId uint64    `gorm:"column:last_seen_id;not null;default:0;comment:已处理的最大主键"`
	Processed  int64     `gorm:"column:processed;not null;default:0;comment:累计处理条数"`
	Failed     int64     `gorm:"column:failed;not null;default:0;comment:累计失败条数"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (JobCheckpoint) TableName() string {
	return "job_checkpoint"
}
