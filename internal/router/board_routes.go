// Package router 提供 HTTP 路由注册
// 本文件定义留言板和举报相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterBoardRoutes 注册留言板相关路由（需要认证）
func (rt *Router) RegisterBoardRoutes(rg *gin.RouterGroup) {
	boardGroup := rg.Group("/board")
	{
		boardGroup.GET("/list", rt.handlers.Board.List)      // 留言列表
		boardGroup.POST("/post", rt.handlers.Board.Post)     // 留言/回复
		boardGroup.POST("/delete", rt.handlers.Board.Delete) // 删除留言
	}
	rg.POST("/comment/report", rt.handlers.Moderation.Report) // 举报留言
}
