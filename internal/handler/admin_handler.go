// Package handler 提供 HTTP 请求处理器
// 本文件处理好友缓存和统计的运维接口
package handler

import (
	"github.com/gin-gonic/gin"

	"social_profile_server/internal/dto/request"
	"social_profile_server/internal/service"
)

// AdminHandler 运维任务处理器
type AdminHandler struct {
	maintenanceSvc service.MaintenanceService
}

// NewAdminHandler 创建运维处理器实例
func NewAdminHandler(maintenanceSvc service.MaintenanceService) *AdminHandler {
	return &AdminHandler{maintenanceSvc: maintenanceSvc}
}

// RebuildCache 投递好友缓存全量重建任务
// POST /admin/friend/rebuildCache
func (h *AdminHandler) RebuildCache(c *gin.Context) {
	var req request.RebuildCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.maintenanceSvc.ScheduleCacheRebuild(c.Request.Context(), req.AfterUserId, req.BatchSize); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RunStats 投递好友统计任务
// POST /admin/friend/stats
func (h *AdminHandler) RunStats(c *gin.Context) {
	var req request.FriendStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.maintenanceSvc.ScheduleStats(c.Request.Context(), req.BatchSize); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetStats 最近一次统计结果，从未统计过时 data 为空
// GET /admin/friend/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, found, err := h.maintenanceSvc.LatestStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	if !found {
		HandleSuccess(c, nil)
		return
	}
	HandleSuccess(c, stats)
}
