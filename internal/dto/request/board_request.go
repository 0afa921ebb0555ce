package request

// PostCommentRequest 留言请求
// 使用位置:
//   - handler/board_handler.go: Post
type PostCommentRequest struct {
	// RecipientId 留言板主人
	RecipientId string `json:"recipient_id" binding:"required,userid"`
	// Text 留言内容
	Text string `json:"text" binding:"required,max=1000"`
	// ParentId 回复的留言ID，可选
	ParentId *uint64 `json:"parent_id"`
}

type ListBoardRequest struct {
	OwnerId  string `form:"owner_id" binding:"required,userid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CommentIdRequest 针对单条留言的请求
type CommentIdRequest struct {
	CommentId uint64 `json:"comment_id" binding:"required"`
}

// ReportCommentRequest 举报留言请求
type ReportCommentRequest struct {
	CommentId uint64 `json:"comment_id" binding:"required"`
	Reason    string `json:"reason" binding:"max=200"`
}
