package service

import (
	"context"

	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service/friendcache"
	"social_profile_server/internal/service/friendstats"
)

// maintenanceService 只负责投递任务，实际执行在任务处理函数中
type maintenanceService struct {
	queue        jobs.Submitter
	stats        *friendstats.Aggregator
	rebuildBatch int
	statsBatch   int
}

func (m *maintenanceService) ScheduleCacheRebuild(ctx context.Context, afterUserId string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = m.rebuildBatch
	}
	return m.queue.Submit(ctx, jobs.TypeFriendCacheRebuild, jobs.FriendCacheRebuildPayload{
		AfterUserId: afterUserId,
		BatchSize:   friendcache.ClampBatchSize(batchSize),
	})
}

func (m *maintenanceService) ScheduleStats(ctx context.Context, batchSize int) error {
	if batchSize <= 0 {
		batchSize = m.statsBatch
	}
	return m.queue.Submit(ctx, jobs.TypeFriendStats, jobs.FriendStatsPayload{BatchSize: batchSize})
}

func (m *maintenanceService) LatestStats(ctx context.Context) (*model.FriendStats, bool, error) {
	return m.stats.Latest(ctx)
}
