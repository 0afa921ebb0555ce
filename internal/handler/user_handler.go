// Package handler 提供 HTTP 请求处理器
// 本文件处理用户相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"social_profile_server/internal/service"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetUserInfo 获取用户信息
// GET /user/info?uuid=xxx，uuid 为空时返回自己
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	uuid := c.Query("uuid")
	if uuid == "" {
		uuid = currentUser(c)
	}
	data, err := h.userSvc.GetUserInfo(c.Request.Context(), uuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
