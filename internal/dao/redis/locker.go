package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"social_profile_server/pkg/errorx"
)

// ErrLockNotAcquired 锁已被其他实例持有
var ErrLockNotAcquired = errors.New("lock not acquired")

// RedsyncLocker 基于 redsync 的分布式锁
type RedsyncLocker struct {
	rs *redsync.Redsync
}

// NewRedsyncLocker 创建分布式锁
func NewRedsyncLocker(client *redis.Client) *RedsyncLocker {
	return &RedsyncLocker{rs: redsync.New(goredis.NewPool(client))}
}

// TryLock 只尝试一次，不排队等待
// 锁被占用返回 ErrLockNotAcquired；Redis 不可用返回 CodeCacheError，由任务框架重试
func (l *RedsyncLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, lockError(name, err)
	}
	return func(ctx context.Context) error {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlock %s", name)
		}
		return nil
	}, nil
}

// lockError 区分锁冲突和基础设施错误
func lockError(name string, err error) error {
	if lockBusy(err) {
		return fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, name, err)
	}
	return errorx.Wrapf(err, errorx.CodeCacheError, "redis lock %s", name)
}

func lockBusy(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}
	var nodeTaken *redsync.ErrNodeTaken
	return errors.As(err, &nodeTaken)
}

var _ Locker = (*RedsyncLocker)(nil)
