// Package model 定义数据库实体模型
// 本文件定义留言板留言和举报模型
package model

import (
	"time"
)

// Comment 留言板留言
// 对应数据库 comment 表，主键自增且严格递增，批量清理按主键游标分页
type Comment struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorId    string    `gorm:"column:author_id;type:char(20);not null;index:idx_comment_author_created,priority:1;comment:留言人ID" json:"authorId"`
	RecipientId string    `gorm:"column:recipient_id;type:char(20);not null;index;comment:留言板主人ID" json:"recipientId"`
	Text        string    `gorm:"column:text;type:varchar(1000);not null;comment:留言内容" json:"text"`
	ParentId    *uint64   `gorm:"column:parent_id;index;comment:回复的留言ID" json:"parentId,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_comment_author_created,priority:2" json:"createdAt"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comment"
}

// ReportResolution 举报处理结果
type ReportResolution string

const (
	ResolutionPending   ReportResolution = "PENDING"   // 待处理
	ResolutionDismissed ReportResolution = "DISMISSED" // 驳回，留言保留
	ResolutionDeleted   ReportResolution = "DELETED"   // 留言已删除
)

// CommentReport 留言举报
// 对应数据库 comment_report 表，一条留言可以有多条举报
type CommentReport struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CommentId  uint64           `gorm:"column:comment_id;not null;index:idx_report_comment_resolution,priority:1;comment:被举报留言ID" json:"commentId"`
	ReporterId string           `gorm:"column:reporter_id;type:char(20);not null;index;comment:举报人ID" json:"reporterId"`
	Reason     string           `gorm:"column:reason;type:varchar(200);comment:举报理由" json:"reason,omitempty"`
	Resolution ReportResolution `gorm:"column:resolution;type:varchar(16);not null;index:idx_report_comment_resolution,priority:2;comment:处理结果" json:"resolution"`
	ResolvedBy string           `gorm:"column:resolved_by;type:char(20);comment:处理人ID" json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time       `gorm:"column:resolved_at;type:datetime;comment:处理时间" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time        `gorm:"column:created_at;index" json:"createdAt"`
}

// TableName 指定表名
func (CommentReport) TableName() string {
	return "comment_report"
}

// ReportedComment 按留言聚合的待处理举报
type ReportedComment struct {
	CommentId       uint64    `json:"commentId"`
	ReportCount     int64     `json:"reportCount"`
	FirstReportedAt time.Time `json:"firstReportedAt"`
	LastReportedAt  time.Time `json:"lastReportedAt"`
}

// ReportSortKey 举报列表排序方式
type ReportSortKey string

const (
	ReportSortVolume ReportSortKey = "volume" // 按待处理举报数降序
	ReportSortDate   ReportSortKey = "date"   // 按最近一次举报时间降序
)

// ParseReportSortKey 在边界处校验排序方式，未知取值返回 false
func ParseReportSortKey(s string) (ReportSortKey, bool) {
	switch ReportSortKey(s) {
	case ReportSortVolume, ReportSortDate:
		return ReportSortKey(s), true
	}
	return "", false
}

// ModerationAction 举报处理动作
type ModerationAction string

const (
	ActionDismiss ModerationAction = "dismiss" // 驳回举报
	ActionDelete  ModerationAction = "delete"  // 删除留言并关闭所有待处理举报
)

// ParseModerationAction 在边界处校验处理动作，未知取值返回 false
func ParseModerationAction(s string) (ModerationAction, bool) {
	switch ModerationAction(s) {
	case ActionDismiss, ActionDelete:
		return ModerationAction(s), true
	}
	return "", false
}
