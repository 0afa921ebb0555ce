package request

// FriendTargetRequest 好友操作请求，操作人取自 Token
// 使用位置:
//   - handler/friend_handler.go: SendRequest / AcceptRequest / IgnoreRequest / RemoveFriend
type FriendTargetRequest struct {
	// TargetId 对方用户ID
	TargetId string `json:"target_id" binding:"required,userid"`
}

// RelationshipQuery 查询两个用户的关系
type RelationshipQuery struct {
	OtherId string `form:"other_id" binding:"required,userid"`
}

// FriendListQuery 查询好友列表，UserId 为空时查询自己
type FriendListQuery struct {
	UserId string `form:"user_id" binding:"omitempty,userid"`
}
