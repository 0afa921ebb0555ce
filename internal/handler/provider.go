// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"social_profile_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	User       *UserHandler
	Friend     *FriendHandler
	Board      *BoardHandler
	Moderation *ModerationHandler
	Admin      *AdminHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		User:       NewUserHandler(svc.User),
		Friend:     NewFriendHandler(svc.Friendship),
		Board:      NewBoardHandler(svc.Board),
		Moderation: NewModerationHandler(svc.Moderation),
		Admin:      NewAdminHandler(svc.Maintenance),
	}
}
