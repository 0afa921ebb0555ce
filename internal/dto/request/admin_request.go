package request

// ListReportsRequest 举报列表查询
// 使用位置:
//   - handler/moderation_handler.go: ListReports
type ListReportsRequest struct {
	// SortKey 排序方式：volume 按举报数，date 按最近举报时间
	SortKey  string `form:"sort_key" binding:"omitempty,oneof=volume date"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ResolveReportRequest 处理举报请求
type ResolveReportRequest struct {
	ReportId uint64 `json:"report_id" binding:"required"`
	// Action dismiss 驳回，delete 删除留言
	Action string `json:"action" binding:"required,oneof=dismiss delete"`
}

// PurgeCommentsRequest 批量清理某用户留言
type PurgeCommentsRequest struct {
	TargetUserId string `json:"target_user_id" binding:"required,userid"`
	Summary      string `json:"summary" binding:"max=200"`
	// Since 起始时间（Unix 秒），0 表示全部
	Since     int64 `json:"since" binding:"min=0"`
	BatchSize int   `json:"batch_size" binding:"omitempty,min=1,max=1000"`
}

// RebuildCacheRequest 全量重建好友缓存
type RebuildCacheRequest struct {
	AfterUserId string `json:"after_user_id" binding:"omitempty,userid"`
	BatchSize   int    `json:"batch_size" binding:"omitempty,min=1,max=1000"`
}

// FriendStatsRequest 触发好友统计
type FriendStatsRequest struct {
	BatchSize int `json:"batch_size" binding:"omitempty,min=1,max=1000"`
}
