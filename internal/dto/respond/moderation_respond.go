package respond

// ReportRespond 举报成功响应
type ReportRespond struct {
	ReportId uint64 `json:"report_id"`
}

// ResolveRespond 处理举报响应，Resolved 为 false 表示举报已被处理过
type ResolveRespond struct {
	Resolved bool `json:"resolved"`
}
