// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"social_profile_server/internal/handler"
	"social_profile_server/internal/infrastructure/middleware"
)

// Router 路由管理器，持有 Handler 聚合和管理员校验
type Router struct {
	handlers *handler.Handlers
	admins   middleware.AdminChecker
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, admins middleware.AdminChecker) *Router {
	return &Router{handlers: handlers, admins: admins}
}

// RegisterRoutes 注册所有路由
// 所有业务接口都需要认证，操作人取自 Access Token
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		handler.HandleSuccess(c, "pong")
	})

	authed := r.Group("/", middleware.JWTAuth())
	rt.RegisterUserRoutes(authed)
	rt.RegisterFriendRoutes(authed)
	rt.RegisterBoardRoutes(authed)

	admin := authed.Group("/admin", middleware.AdminOnly(rt.admins))
	rt.RegisterAdminRoutes(admin)
}
