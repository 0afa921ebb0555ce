// Package handler 提供 HTTP 请求处理器
// 本文件处理好友关系相关的 API 请求
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"social_profile_server/internal/dto/request"
	"social_profile_server/internal/dto/respond"
	"social_profile_server/internal/service"
)

// FriendHandler 好友请求处理器
type FriendHandler struct {
	friendSvc service.FriendshipService
}

// NewFriendHandler 创建好友处理器实例
func NewFriendHandler(friendSvc service.FriendshipService) *FriendHandler {
	return &FriendHandler{friendSvc: friendSvc}
}

// SendRequest 发起好友申请
// POST /friend/request
// 请求体: request.FriendTargetRequest
// 响应: respond.RelationshipRespond（申请后的关系）
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req request.FriendTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	actor := currentUser(c)
	state, err := h.friendSvc.SendRequest(c.Request.Context(), actor, req.TargetId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RelationshipRespond{UserId: actor, OtherId: req.TargetId, State: string(state)})
}

// AcceptRequest 接受好友申请
// POST /friend/accept
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.mutate(c, h.friendSvc.AcceptRequest)
}

// IgnoreRequest 忽略好友申请
// POST /friend/ignore
func (h *FriendHandler) IgnoreRequest(c *gin.Context) {
	h.mutate(c, h.friendSvc.IgnoreRequest)
}

// RemoveFriend 删除好友
// POST /friend/remove
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	h.mutate(c, h.friendSvc.RemoveFriend)
}

// mutate 绑定 target_id 后以当前用户为 actor 调用 op
func (h *FriendHandler) mutate(c *gin.Context, op func(ctx context.Context, actor, other string) error) {
	var req request.FriendTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := op(c.Request.Context(), currentUser(c), req.TargetId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetRelationship 查询当前用户与对方的关系
// GET /friend/relationship?other_id=xxx
func (h *FriendHandler) GetRelationship(c *gin.Context) {
	var req request.RelationshipQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	actor := currentUser(c)
	state, err := h.friendSvc.GetRelationship(c.Request.Context(), actor, req.OtherId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RelationshipRespond{UserId: actor, OtherId: req.OtherId, State: string(state)})
}

// GetFriends 好友列表
// GET /friend/list?user_id=xxx
// 查看他人时只返回好友，申请列表只对本人可见
func (h *FriendHandler) GetFriends(c *gin.Context) {
	var req request.FriendListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	actor := currentUser(c)
	userId := req.UserId
	if userId == "" {
		userId = actor
	}
	ctx := c.Request.Context()
	lists, err := h.friendSvc.GetFriends(ctx, userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	count, err := h.friendSvc.FriendCount(ctx, userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	data := respond.FriendListRespond{
		UserId:   userId,
		Friends:  lists.Friends,
		Incoming: []string{},
		Outgoing: []string{},
		Count:    count,
	}
	if userId == actor {
		data.Incoming = lists.Incoming
		data.Outgoing = lists.Outgoing
	}
	HandleSuccess(c, data)
}
