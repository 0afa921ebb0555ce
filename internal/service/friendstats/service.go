// Package friendstats 按固定计划扫描好友缓存，计算好友数量分布
// 只读缓存不读关系表；结果整体覆盖 friend:stats，扫描中途失败不会写入任何结果
package friendstats

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
)

const (
	lockName         = "lock:friend_stats"
	defaultBatchSize = 500
	maxBatchSize     = 1000
	// TenPlusThreshold 统计"好友数不少于该值"的用户数
	TenPlusThreshold = 10
)

// Aggregator 好友数量统计任务
type Aggregator struct {
	cache   myredis.FriendCache
	store   myredis.StatsStore
	locker  myredis.Locker
	lockTTL time.Duration
	now     func() time.Time
}

// NewAggregator 构造函数
func NewAggregator(cache myredis.FriendCache, store myredis.StatsStore, locker myredis.Locker) *Aggregator {
	return &Aggregator{
		cache:   cache,
		store:   store,
		locker:  locker,
		lockTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Run 执行一次完整统计
// AvgFriends 不是精确的全量均值：本次扫描均值与上一次结果做两点平均 (run_avg + old_avg) / 2
func (a *Aggregator) Run(ctx context.Context, batchSize int) (*model.FriendStats, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}

	unlock, err := a.locker.TryLock(ctx, lockName, a.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			zap.L().Warn("释放统计锁失败", zap.Error(err))
		}
	}()

	stats := &model.FriendStats{}
	var sum int64
	var cursor uint64
	// SCAN 可能重复返回同一个键
	seen := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, next, err := a.cache.ScanCounts(ctx, cursor, batchSize)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Missing {
				continue
			}
			if _, dup := seen[e.UserId]; dup {
				continue
			}
			seen[e.UserId] = struct{}{}
			n, err := strconv.ParseInt(e.Raw, 10, 64)
			if err != nil || n < 0 {
				zap.L().Warn("跳过无法解析的好友数量", zap.String("user", e.UserId), zap.String("raw", e.Raw))
				stats.Skipped++
				continue
			}
			stats.Users++
			sum += n
			if n == 0 {
				stats.ZeroFriends++
			}
			if n >= TenPlusThreshold {
				stats.TenPlus++
			}
			if n > stats.MaxFriends {
				stats.MaxFriends = n
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	var runAvg float64
	if stats.Users > 0 {
		runAvg = float64(sum) / float64(stats.Users)
	}
	prev, found, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	stats.AvgFriends = runAvg
	if found {
		stats.AvgFriends = (runAvg + prev.AvgFriends) / 2
	}
	stats.UpdatedAt = a.now()

	if err := a.store.Save(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// HandleJob friend_stats 任务处理函数
// 已有实例在统计时直接跳过，不重试；Redis 不可用的错误原样返回，由队列重试
func (a *Aggregator) HandleJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.FriendStatsPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}
	stats, err := a.Run(ctx, payload.BatchSize)
	if errors.Is(err, myredis.ErrLockNotAcquired) {
		zap.L().Info("好友统计正在其他实例执行，跳过本次", zap.Int64("job", job.Id))
		return nil
	}
	if err != nil {
		return err
	}
	zap.L().Info("好友统计完成",
		zap.Int64("users", stats.Users),
		zap.Int64("zero", stats.ZeroFriends),
		zap.Int64("tenPlus", stats.TenPlus),
		zap.Int64("max", stats.MaxFriends),
		zap.Float64("avg", stats.AvgFriends),
		zap.Int64("skipped", stats.Skipped))
	return nil
}

// Register 注册任务处理函数
func (a *Aggregator) Register(d *jobs.Dispatcher) {
	d.Register(jobs.TypeFriendStats, a.HandleJob)
}

// Latest 读取最近一次统计结果，从未统计过时返回 found=false
func (a *Aggregator) Latest(ctx context.Context) (*model.FriendStats, bool, error) {
	return a.store.Load(ctx)
}
