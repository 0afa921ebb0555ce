package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

// RedisStatsStore 统计结果存储在 friend:stats 哈希中
type RedisStatsStore struct {
	client *redis.Client
}

// NewRedisStatsStore 创建统计结果存储
func NewRedisStatsStore(client *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{client: client}
}

// Load 读取上一次统计结果
func (s *RedisStatsStore) Load(ctx context.Context) (*model.FriendStats, bool, error) {
	fields, err := s.client.HGetAll(ctx, friendStatsKey).Result()
	if err != nil {
		return nil, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis hgetall %s", friendStatsKey)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	stats, err := decodeStats(fields)
	if err != nil {
		return nil, false, errorx.Wrapf(err, errorx.CodeCacheError, "解析统计结果 %s", friendStatsKey)
	}
	return stats, true, nil
}

// Save 整体覆盖统计结果
func (s *RedisStatsStore) Save(ctx context.Context, stats *model.FriendStats) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, friendStatsKey)
		pipe.HSet(ctx, friendStatsKey, encodeStats(stats))
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis hset %s", friendStatsKey)
	}
	return nil
}

func encodeStats(stats *model.FriendStats) map[string]interface{} {
	return map[string]interface{}{
		"users":        stats.Users,
		"zero_friends": stats.ZeroFriends,
		"ten_plus":     stats.TenPlus,
		"max_friends":  stats.MaxFriends,
		"avg_friends":  strconv.FormatFloat(stats.AvgFriends, 'f', -1, 64),
		"skipped":      stats.Skipped,
		"updated_at":   stats.UpdatedAt.Unix(),
	}
}

func decodeStats(fields map[string]string) (*model.FriendStats, error) {
	var stats model.FriendStats
	ints := map[string]*int64{
		"users":        &stats.Users,
		"zero_friends": &stats.ZeroFriends,
		"ten_plus":     &stats.TenPlus,
		"max_friends":  &stats.MaxFriends,
		"skipped":      &stats.Skipped,
	}
	for name, dst := range ints {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	if raw, ok := fields["avg_friends"]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		stats.AvgFriends = v
	}
	if raw, ok := fields["updated_at"]; ok {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		stats.UpdatedAt = time.Unix(sec, 0)
	}
	return &stats, nil
}

var _ StatsStore = (*RedisStatsStore)(nil)
