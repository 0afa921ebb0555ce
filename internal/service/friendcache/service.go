// Package friendcache 负责把关系表中的好友关系同步到快速查询缓存
// 缓存不是权威数据源：单用户同步是整体替换，全量重建按用户ID分页，可以从任意游标重新开始
package friendcache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"social_profile_server/internal/dao/mysql/repository"
	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/jobs"
	"social_profile_server/pkg/errorx"
)

// 全量重建的分页范围
const (
	MinBatchSize = 1
	MaxBatchSize = 1000
)

// Syncer 好友缓存同步
type Syncer struct {
	repos *repository.Repositories
	cache myredis.FriendCache
	queue jobs.Submitter // 重建中断后从游标续投，为 nil 时按原任务重试
}

// NewSyncer 构造函数
func NewSyncer(repos *repository.Repositories, cache myredis.FriendCache) *Syncer {
	return &Syncer{repos: repos, cache: cache}
}

// WithResubmit 设置重建续投使用的队列
func (s *Syncer) WithResubmit(queue jobs.Submitter) *Syncer {
	s.queue = queue
	return s
}

// SyncUser 用关系表中的 ACCEPTED 行整体替换用户的缓存，重复执行结果相同
func (s *Syncer) SyncUser(ctx context.Context, userId string) error {
	if userId == "" {
		return errorx.New(errorx.CodeInvalidParam, "用户ID不能为空")
	}
	friends, err := s.repos.Relationship.ListAcceptedCounterparts(ctx, userId)
	if err != nil {
		return err
	}
	return s.cache.ReplaceFriends(ctx, userId, friends)
}

// RebuildResult 全量重建结果
type RebuildResult struct {
	Cursor    string `json:"cursor"`    // 最后一个已完成同步的用户ID
	Users     int    `json:"users"`     // 本次同步的用户数
	Pages     int    `json:"pages"`     // 读取的页数
	Completed bool   `json:"completed"` // 是否已经扫描到最后一个用户
}

// ClampBatchSize 把分页大小限制在 [MinBatchSize, MaxBatchSize]
func ClampBatchSize(n int) int {
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// Rebuild 从 afterUserId 之后按用户ID升序逐页同步
// 不开启长事务；ctx 取消或单个用户失败时返回已完成的游标，调用方可以从该游标继续
func (s *Syncer) Rebuild(ctx context.Context, afterUserId string, batchSize int) (*RebuildResult, error) {
	batchSize = ClampBatchSize(batchSize)
	result := &RebuildResult{Cursor: afterUserId}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		ids, err := s.repos.User.ListUuidsAfter(ctx, result.Cursor, batchSize)
		if err != nil {
			return result, err
		}
		result.Pages++

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := s.SyncUser(ctx, id); err != nil {
				return result, err
			}
			result.Cursor = id
			result.Users++
		}

		if len(ids) < batchSize {
			result.Completed = true
			return result, nil
		}
	}
}

// HandleSyncJob friend_cache_sync 任务处理函数
func (s *Syncer) HandleSyncJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.FriendCacheSyncPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}
	return s.SyncUser(ctx, payload.UserId)
}

// HandleRebuildJob friend_cache_rebuild 任务处理函数
func (s *Syncer) HandleRebuildJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.FriendCacheRebuildPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}
	result, err := s.Rebuild(ctx, payload.AfterUserId, payload.BatchSize)
	if err != nil {
		zap.L().Warn("好友缓存重建中断",
			zap.String("cursor", result.Cursor),
			zap.Int("users", result.Users),
			zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return jobs.Permanent(err)
		}
		return s.resubmitRebuild(ctx, payload, result, err)
	}
	zap.L().Info("好友缓存重建完成",
		zap.String("from", payload.AfterUserId),
		zap.Int("users", result.Users),
		zap.Int("pages", result.Pages))
	return nil
}

// resubmitRebuild 已有进度的可重试失败改为从已完成的游标投递新任务，不再从头重跑
// 没有进度或续投失败时返回原错误，交给队列按原任务重试
func (s *Syncer) resubmitRebuild(ctx context.Context, payload jobs.FriendCacheRebuildPayload, result *RebuildResult, cause error) error {
	if s.queue == nil || !jobs.Retryable(cause) || result.Cursor == payload.AfterUserId {
		return cause
	}
	next := jobs.FriendCacheRebuildPayload{AfterUserId: result.Cursor, BatchSize: payload.BatchSize}
	if err := s.queue.Submit(ctx, jobs.TypeFriendCacheRebuild, next); err != nil {
		zap.L().Warn("好友缓存重建续投失败", zap.String("cursor", result.Cursor), zap.Error(err))
		return cause
	}
	zap.L().Info("好友缓存重建从游标续投", zap.String("cursor", result.Cursor))
	return nil
}

// Register 注册任务处理函数
func (s *Syncer) Register(d *jobs.Dispatcher) {
	d.Register(jobs.TypeFriendCacheSync, s.HandleSyncJob)
	d.Register(jobs.TypeFriendCacheRebuild, s.HandleRebuildJob)
}
