package respond

// RelationshipRespond 两个用户的关系，State 相对于 UserId 在前的顺序
// 使用位置:
//   - handler/friend_handler.go: SendRequest / GetRelationship
type RelationshipRespond struct {
	UserId  string `json:"user_id"`
	OtherId string `json:"other_id"`
	State   string `json:"state"`
}

// FriendListRespond 好友列表，三个列表互不相交
type FriendListRespond struct {
	UserId   string   `json:"user_id"`
	Friends  []string `json:"friends"`
	Incoming []string `json:"incoming"`
	Outgoing []string `json:"outgoing"`
	Count    int64    `json:"count"`
}
