// Package redistest 提供缓存接口的内存实现，供 Service 层测试使用
package redistest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

// FriendCache 好友缓存的内存实现
// 计数以原始字符串保存，测试可以写入无法解析的值
type FriendCache struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	counts map[string]string
	// Err 非 nil 时所有操作返回该错误
	Err error
	// FailUser 非空时只有该用户的写入失败
	FailUser string
}

// NewFriendCache 创建内存好友缓存
func NewFriendCache() *FriendCache {
	return &FriendCache{
		sets:   make(map[string]map[string]struct{}),
		counts: make(map[string]string),
	}
}

func (c *FriendCache) fail(op string) error {
	if c.Err == nil {
		return nil
	}
	return errorx.Wrap(c.Err, errorx.CodeCacheError, op)
}

// ReplaceFriends 整体替换
func (c *FriendCache) ReplaceFriends(ctx context.Context, userId string, friends []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("replace"); err != nil {
		return err
	}
	if c.FailUser != "" && c.FailUser == userId {
		return errorx.Newf(errorx.CodeCacheError, "replace %s", userId)
	}
	set := make(map[string]struct{}, len(friends))
	for _, f := range friends {
		set[f] = struct{}{}
	}
	c.sets[userId] = set
	c.counts[userId] = strconv.Itoa(len(set))
	return nil
}

// Friends 读取好友集合，结果按字典序排列
func (c *FriendCache) Friends(ctx context.Context, userId string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("friends"); err != nil {
		return nil, false, err
	}
	set, ok := c.sets[userId]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, true, nil
}

// IsFriend 判断是否为好友
func (c *FriendCache) IsFriend(ctx context.Context, userId, other string) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("is friend"); err != nil {
		return false, false, err
	}
	set, ok := c.sets[userId]
	if !ok {
		return false, false, nil
	}
	_, member := set[other]
	return member, true, nil
}

// FriendCount 读取好友数量
func (c *FriendCache) FriendCount(ctx context.Context, userId string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("count"); err != nil {
		return 0, false, err
	}
	set, ok := c.sets[userId]
	if !ok {
		return 0, false, nil
	}
	return int64(len(set)), true, nil
}

// ScanCounts 按用户ID排序后以下标作为游标
func (c *FriendCache) ScanCounts(ctx context.Context, cursor uint64, batch int) ([]myredis.CountEntry, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("scan"); err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(c.counts))
	for id := range c.counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	start := int(cursor)
	end := start + batch
	if end > len(ids) {
		end = len(ids)
	}
	var entries []myredis.CountEntry
	for _, id := range ids[start:end] {
		entries = append(entries, myredis.CountEntry{UserId: id, Raw: c.counts[id]})
	}
	next := uint64(end)
	if end >= len(ids) {
		next = 0
	}
	return entries, next, nil
}

// SetRawCount 直接写入计数键，用于构造损坏数据
func (c *FriendCache) SetRawCount(userId, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userId] = raw
}

// Snapshot 返回 userId 的缓存好友集合
func (c *FriendCache) Snapshot(userId string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.sets[userId]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, true
}

// StatsStore 统计结果的内存实现
type StatsStore struct {
	mu    sync.Mutex
	stats *model.FriendStats
}

// Load 读取
func (s *StatsStore) Load(ctx context.Context) (*model.FriendStats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil, false, nil
	}
	cp := *s.stats
	return &cp, true, nil
}

// Save 覆盖
func (s *StatsStore) Save(ctx context.Context, stats *model.FriendStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *stats
	s.stats = &cp
	return nil
}

// Locker 进程内互斥锁
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
	// Err 非 nil 时模拟 Redis 不可用
	Err error
}

// TryLock 已被持有时返回 ErrLockNotAcquired
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, errorx.Wrap(l.Err, errorx.CodeCacheError, "lock "+name)
	}
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[name] {
		return nil, myredis.ErrLockNotAcquired
	}
	l.held[name] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
		return nil
	}, nil
}

var (
	_ myredis.FriendCache = (*FriendCache)(nil)
	_ myredis.StatsStore  = (*StatsStore)(nil)
	_ myredis.Locker      = (*Locker)(nil)
)
