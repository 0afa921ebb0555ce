package model

import "time"

// FriendStats 好友数量统计（派生数据，每次运行整体覆盖）
// AvgFriends 是与上一次结果做两点平均后的近似值，不是精确的全量均值
type FriendStats struct {
	Users       int64     `json:"users"`
	ZeroFriends int64     `json:"zeroFriends"`
	TenPlus     int64     `json:"tenPlus"`
	MaxFriends  int64     `json:"maxFriends"`
	AvgFriends  float64   `json:"avgFriends"`
	Skipped     int64     `json:"skipped"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
