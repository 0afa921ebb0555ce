// Package handler 提供 HTTP 请求处理器
// 本文件处理留言板相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"social_profile_server/internal/dto/request"
	"social_profile_server/internal/service"
)

// BoardHandler 留言板请求处理器
type BoardHandler struct {
	boardSvc service.BoardService
}

// NewBoardHandler 创建留言板处理器实例
func NewBoardHandler(boardSvc service.BoardService) *BoardHandler {
	return &BoardHandler{boardSvc: boardSvc}
}

// Post 留言
// POST /board/post
// 请求体: request.PostCommentRequest
// 响应: model.Comment
func (h *BoardHandler) Post(c *gin.Context) {
	var req request.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	comment, err := h.boardSvc.Post(c.Request.Context(), currentUser(c), req.RecipientId, req.Text, req.ParentId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, comment)
}

// List 留言列表
// GET /board/list?owner_id=xxx&page=1&page_size=20
func (h *BoardHandler) List(c *gin.Context) {
	var req request.ListBoardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.boardSvc.List(c.Request.Context(), req.OwnerId, req.Page, req.PageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Delete 删除留言（作者或留言板主人）
// POST /board/delete
func (h *BoardHandler) Delete(c *gin.Context) {
	var req request.CommentIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.boardSvc.Delete(c.Request.Context(), currentUser(c), req.CommentId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
