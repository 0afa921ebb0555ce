// Package redis 提供 FriendCache 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"social_profile_server/pkg/errorx"
)

// RedisFriendCache 好友缓存的 Redis 实现
// 每个用户两个键：friend:set:<uid> 保存好友ID集合，friend:count:<uid> 保存数量
type RedisFriendCache struct {
	client *redis.Client
}

// NewRedisFriendCache 创建好友缓存实例
func NewRedisFriendCache(client *redis.Client) *RedisFriendCache {
	return &RedisFriendCache{client: client}
}

// ReplaceFriends 在 MULTI/EXEC 中执行 DEL + SADD + SET，读者看不到中间状态
func (r *RedisFriendCache) ReplaceFriends(ctx context.Context, userId string, friends []string) error {
	setKey := FriendSetKey(userId)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, setKey)
		if len(friends) > 0 {
			members := make([]interface{}, len(friends))
			for i, f := range friends {
				members[i] = f
			}
			pipe.SAdd(ctx, setKey, members...)
		}
		pipe.Set(ctx, FriendCountKey(userId), len(friends), 0)
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis replace friends user %s", userId)
	}
	return nil
}

// Friends 读取好友集合
func (r *RedisFriendCache) Friends(ctx context.Context, userId string) ([]string, bool, error) {
	var existsCmd *redis.IntCmd
	var membersCmd *redis.StringSliceCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		existsCmd = pipe.Exists(ctx, FriendCountKey(userId))
		membersCmd = pipe.SMembers(ctx, FriendSetKey(userId))
		return nil
	})
	if err != nil {
		return nil, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis smembers user %s", userId)
	}
	if existsCmd.Val() == 0 {
		return nil, false, nil
	}
	return membersCmd.Val(), true, nil
}

// IsFriend 判断是否为好友
func (r *RedisFriendCache) IsFriend(ctx context.Context, userId, other string) (bool, bool, error) {
	var existsCmd *redis.IntCmd
	var memberCmd *redis.BoolCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		existsCmd = pipe.Exists(ctx, FriendCountKey(userId))
		memberCmd = pipe.SIsMember(ctx, FriendSetKey(userId), other)
		return nil
	})
	if err != nil {
		return false, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis sismember user %s", userId)
	}
	if existsCmd.Val() == 0 {
		return false, false, nil
	}
	return memberCmd.Val(), true, nil
}

// FriendCount 读取好友数量
func (r *RedisFriendCache) FriendCount(ctx context.Context, userId string) (int64, bool, error) {
	n, err := r.client.Get(ctx, FriendCountKey(userId)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis get count user %s", userId)
	}
	return n, true, nil
}

// ScanCounts 扫描一批 friend:count:* 并用 MGET 批量取值
// SCAN 的 COUNT 只是提示，单批返回的键数可能多于或少于 batch
func (r *RedisFriendCache) ScanCounts(ctx context.Context, cursor uint64, batch int) ([]CountEntry, uint64, error) {
	keys, next, err := r.client.Scan(ctx, cursor, friendCountKeyPrefix+"*", int64(batch)).Result()
	if err != nil {
		return nil, 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis scan cursor %d", cursor)
	}
	if len(keys) == 0 {
		return nil, next, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis mget %d keys", len(keys))
	}
	return countEntries(keys, values), next, nil
}

// countEntries 把 SCAN 出的键和 MGET 的值配对
// 值为 nil 说明键在 SCAN 和 MGET 之间被删除
func countEntries(keys []string, values []interface{}) []CountEntry {
	entries := make([]CountEntry, 0, len(keys))
	for i, key := range keys {
		entry := CountEntry{UserId: strings.TrimPrefix(key, friendCountKeyPrefix)}
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		switch t := v.(type) {
		case nil:
			entry.Missing = true
		case string:
			entry.Raw = t
		case []byte:
			entry.Raw = string(t)
		case int64:
			entry.Raw = strconv.FormatInt(t, 10)
		}
		entries = append(entries, entry)
	}
	return entries
}

// 确保 RedisFriendCache 实现了 FriendCache 接口
var _ FriendCache = (*RedisFriendCache)(nil)
