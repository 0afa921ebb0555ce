package respond

// GetUserInfoRespond 获取用户信息响应
// 使用位置:
//   - internal/service/user/service.go: GetUserInfo
type GetUserInfoRespond struct {
	Uuid      string `json:"uuid"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"created_at"`
	IsAdmin   int8   `json:"is_admin"`
	Status    int8   `json:"status"`
}
