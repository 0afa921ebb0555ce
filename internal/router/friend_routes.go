// Package router 提供 HTTP 路由注册
// 本文件定义好友相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendRoutes 注册好友相关路由（需要认证）
func (rt *Router) RegisterFriendRoutes(rg *gin.RouterGroup) {
	friendGroup := rg.Group("/friend")
	{
		// ===== 查询 =====
		friendGroup.GET("/list", rt.handlers.Friend.GetFriends)              // 好友、收到的申请、发出的申请
		friendGroup.GET("/relationship", rt.handlers.Friend.GetRelationship) // 与某人的关系

		// ===== 关系变更 =====
		friendGroup.POST("/request", rt.handlers.Friend.SendRequest)  // 发起好友申请
		friendGroup.POST("/accept", rt.handlers.Friend.AcceptRequest) // 接受申请
		friendGroup.POST("/ignore", rt.handlers.Friend.IgnoreRequest) // 忽略申请
		friendGroup.POST("/remove", rt.handlers.Friend.RemoveFriend)  // 删除好友
	}
}

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.GET("/user/info", rt.handlers.User.GetUserInfo)
}
