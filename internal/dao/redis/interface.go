// Package redis 定义缓存服务接口
// Service 层依赖此接口而非具体 Redis 实现，缓存不是权威数据源，随时可以从数据库重建
package redis

import (
	"context"
	"time"

	"social_profile_server/internal/model"
)

// 缓存键
const (
	friendSetKeyPrefix   = "friend:set:"   // 好友ID集合
	friendCountKeyPrefix = "friend:count:" // 好友数量，0 也写入
	friendStatsKey       = "friend:stats"  // 统计结果哈希
)

// FriendSetKey 用户好友集合的键
func FriendSetKey(userId string) string {
	return friendSetKeyPrefix + userId
}

// FriendCountKey 用户好友数量的键
func FriendCountKey(userId string) string {
	return friendCountKeyPrefix + userId
}

// CountEntry SCAN 扫描出的一条好友数量记录
// Raw 保留原始字符串，由调用方决定如何处理无法解析的值
type CountEntry struct {
	UserId  string
	Raw     string
	Missing bool // SCAN 和 MGET 之间键被删除
}

// FriendCache 好友快速查询缓存
type FriendCache interface {
	// ReplaceFriends 原子地整体替换用户的好友集合和数量
	ReplaceFriends(ctx context.Context, userId string, friends []string) error
	// Friends 读取好友集合，cached=false 表示该用户尚未写入缓存
	Friends(ctx context.Context, userId string) (friends []string, cached bool, err error)
	// IsFriend 判断 other 是否在 userId 的好友集合中
	IsFriend(ctx context.Context, userId, other string) (isFriend bool, cached bool, err error)
	// FriendCount 读取好友数量
	FriendCount(ctx context.Context, userId string) (count int64, cached bool, err error)
	// ScanCounts 从 cursor 开始扫描一批好友数量，next 为 0 表示扫描结束
	ScanCounts(ctx context.Context, cursor uint64, batch int) (entries []CountEntry, next uint64, err error)
}

// StatsStore 好友统计结果存储
type StatsStore interface {
	// Load 读取上一次统计结果，found=false 表示从未写入
	Load(ctx context.Context) (stats *model.FriendStats, found bool, err error)
	// Save 整体覆盖统计结果
	Save(ctx context.Context, stats *model.FriendStats) error
}

// Locker 分布式互斥锁
type Locker interface {
	// TryLock 尝试获取锁，已被持有时返回 ErrLockNotAcquired
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(context.Context) error, err error)
}
