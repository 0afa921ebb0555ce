// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"social_profile_server/internal/config"
	"social_profile_server/internal/dao/mysql/repository"
	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/infrastructure/notify"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/service/board"
	"social_profile_server/internal/service/friendcache"
	"social_profile_server/internal/service/friendship"
	"social_profile_server/internal/service/friendstats"
	"social_profile_server/internal/service/moderation"
	"social_profile_server/internal/service/notification"
	"social_profile_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	User        UserService
	Friendship  FriendshipService
	Board       BoardService
	Moderation  ModerationService
	Maintenance MaintenanceService

	queue jobs.Queue
	sink  *notify.KafkaSink
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 基于 Redis 客户端创建缓存、统计存储和分布式锁
//  2. 创建任务分发器和队列（channel 或 kafka）
//  3. 创建各个 Service 并把任务处理函数注册到分发器
func NewServices(repos *repository.Repositories, rdb *redis.Client, conf *config.Config) *Services {
	cache := myredis.NewRedisFriendCache(rdb)
	statsStore := myredis.NewRedisStatsStore(rdb)
	locker := myredis.NewRedsyncLocker(rdb)

	dispatcher := jobs.NewDispatcher()
	queue := jobs.NewQueue(dispatcher, conf)

	svc := &Services{queue: queue}

	var sink notification.Sink = notify.LogSink{}
	if conf.JobConfig.Mode == "kafka" {
		svc.sink = notify.NewKafkaSink(conf.KafkaConfig)
		sink = svc.sink
	}
	notifier := notification.NewNotifier(repos.User, sink)

	syncer := friendcache.NewSyncer(repos, cache).WithResubmit(queue)
	aggregator := friendstats.NewAggregator(cache, statsStore, locker)
	moderationSvc := moderation.NewModerationService(repos, queue).WithPurgeBatchSize(conf.JobConfig.PurgeBatchSize)

	syncer.Register(dispatcher)
	aggregator.Register(dispatcher)
	moderationSvc.Register(dispatcher)

	svc.User = user.NewUserService(repos)
	svc.Friendship = friendship.NewFriendshipService(repos, cache, queue, syncer, notifier)
	svc.Board = board.NewBoardService(repos, moderationSvc, notifier)
	svc.Moderation = moderationSvc
	svc.Maintenance = &maintenanceService{
		queue:        queue,
		stats:        aggregator,
		rebuildBatch: conf.JobConfig.RebuildBatchSize,
		statsBatch:   conf.JobConfig.StatsBatchSize,
	}
	return svc
}

// Start 启动任务消费
func (s *Services) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Close 停止任务消费并关闭通知通道
func (s *Services) Close() {
	if err := s.queue.Close(); err != nil {
		zap.L().Error("关闭任务队列失败", zap.Error(err))
	}
	if s.sink != nil {
		s.sink.Close()
	}
}
