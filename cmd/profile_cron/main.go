// profile_cron 由外部 crontab 调用，触发好友统计或好友缓存全量重建
//
//	profile_cron -job stats
//	profile_cron -job rebuild -after U0000 -batch 500
//
// kafka 模式下只投递任务，由 profile_server 消费；channel 模式下在本进程内直接执行
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"social_profile_server/internal/config"
	dao "social_profile_server/internal/dao/mysql"
	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/infrastructure/logger"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/service/friendcache"
	"social_profile_server/internal/service/friendstats"
	"social_profile_server/pkg/util/snowflake"
)

func main() {
	job := flag.String("job", "stats", "任务类型：stats 或 rebuild")
	after := flag.String("after", "", "rebuild 起始游标（用户ID），为空从头开始")
	batch := flag.Int("batch", 0, "分页大小，0 使用配置值")
	flag.Parse()

	conf := config.GetConfig()
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.AppName+"_cron", conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	if err := snowflake.Init(conf.SnowflakeConfig.MachineID); err != nil {
		zap.L().Fatal("初始化雪花节点失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *job {
	case "stats":
		size := pick(*batch, conf.JobConfig.StatsBatchSize)
		err = runOrSubmit(ctx, conf, jobs.TypeFriendStats, jobs.FriendStatsPayload{BatchSize: size})
	case "rebuild":
		size := pick(*batch, conf.JobConfig.RebuildBatchSize)
		err = runOrSubmit(ctx, conf, jobs.TypeFriendCacheRebuild, jobs.FriendCacheRebuildPayload{AfterUserId: *after, BatchSize: size})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		zap.L().Error("任务失败", zap.String("job", *job), zap.Error(err))
		os.Exit(1)
	}
}

func pick(flagValue, confValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return confValue
}

// runOrSubmit kafka 模式投递到任务主题，否则构造处理函数直接执行
func runOrSubmit(ctx context.Context, conf *config.Config, t jobs.Type, payload any) error {
	if conf.JobConfig.Mode == "kafka" {
		queue := jobs.NewKafkaQueue(jobs.NewDispatcher(), conf.KafkaConfig, conf.JobConfig.MaxAttempts)
		defer queue.Close()
		if err := queue.Submit(ctx, t, payload); err != nil {
			return err
		}
		zap.L().Info("任务已投递", zap.String("type", string(t)))
		return nil
	}

	rdb := myredis.Init()
	defer rdb.Close()
	cache := myredis.NewRedisFriendCache(rdb)

	dispatcher := jobs.NewDispatcher()
	switch t {
	case jobs.TypeFriendStats:
		friendstats.NewAggregator(cache, myredis.NewRedisStatsStore(rdb), myredis.NewRedsyncLocker(rdb)).Register(dispatcher)
	case jobs.TypeFriendCacheRebuild:
		_, repos := dao.Init()
		friendcache.NewSyncer(repos, cache).Register(dispatcher)
	}

	job, err := jobs.NewJob(t, payload)
	if err != nil {
		return err
	}
	return dispatcher.Dispatch(ctx, job)
}
