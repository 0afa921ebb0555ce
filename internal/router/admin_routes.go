// Package router 提供 HTTP 路由注册
// 本文件定义管理员相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员相关路由
// rg 已挂载 JWTAuth 和 AdminOnly
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	// ===== 举报处理 =====
	reportGroup := rg.Group("/report")
	{
		reportGroup.GET("/list", rt.handlers.Moderation.ListReports) // 待处理举报列表
		reportGroup.POST("/resolve", rt.handlers.Moderation.Resolve) // 处理举报
	}

	// ===== 留言清理 =====
	rg.POST("/comment/purge", rt.handlers.Moderation.Purge) // 批量清理某用户的留言

	// ===== 好友缓存与统计 =====
	friendGroup := rg.Group("/friend")
	{
		friendGroup.POST("/rebuildCache", rt.handlers.Admin.RebuildCache) // 全量重建好友缓存
		friendGroup.POST("/stats", rt.handlers.Admin.RunStats)            // 触发好友统计
		friendGroup.GET("/stats", rt.handlers.Admin.GetStats)             // 最近一次统计结果
	}
}
