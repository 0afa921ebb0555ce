// Package handler 提供 HTTP 请求处理器
// 本文件处理举报和留言审核相关的 API 请求
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"social_profile_server/internal/dto/request"
	"social_profile_server/internal/dto/respond"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service"
	"social_profile_server/internal/service/moderation"
)

const defaultReportPageSize = 20

// ModerationHandler 举报处理器
type ModerationHandler struct {
	moderationSvc service.ModerationService
}

// NewModerationHandler 创建举报处理器实例
func NewModerationHandler(moderationSvc service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationSvc: moderationSvc}
}

// Report 举报留言
// POST /comment/report
func (h *ModerationHandler) Report(c *gin.Context) {
	var req request.ReportCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	report, err := h.moderationSvc.Report(c.Request.Context(), req.CommentId, currentUser(c), req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ReportRespond{ReportId: report.ID})
}

// ListReports 待处理举报列表（管理员）
// GET /admin/report/list?sort_key=volume&page_size=20&offset=0
func (h *ModerationHandler) ListReports(c *gin.Context) {
	var req request.ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	sortKey := model.ReportSortVolume
	if req.SortKey != "" {
		sortKey, _ = model.ParseReportSortKey(req.SortKey)
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = defaultReportPageSize
	}
	data, err := h.moderationSvc.ListReports(c.Request.Context(), sortKey, pageSize, req.Offset)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Resolve 处理举报（管理员）
// POST /admin/report/resolve
func (h *ModerationHandler) Resolve(c *gin.Context) {
	var req request.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	action, _ := model.ParseModerationAction(req.Action)
	ok, err := h.moderationSvc.Resolve(c.Request.Context(), req.ReportId, action, currentUser(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ResolveRespond{Resolved: ok})
}

// Purge 批量清理某用户的留言（管理员），异步执行
// POST /admin/comment/purge
func (h *ModerationHandler) Purge(c *gin.Context) {
	var req request.PurgeCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	err := h.moderationSvc.SchedulePurge(c.Request.Context(), moderation.PurgeRequest{
		TargetUserId: req.TargetUserId,
		Summary:      req.Summary,
		Since:        time.Unix(req.Since, 0),
		ActingBot:    currentUser(c),
		BatchSize:    req.BatchSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"job_key": moderation.PurgeJobKey(req.TargetUserId, time.Unix(req.Since, 0))})
}
