package friendstats

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/dao/redis/redistest"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
)

func newAggregator(counts map[string]string) (*Aggregator, *redistest.StatsStore, *redistest.Locker) {
	cache := redistest.NewFriendCache()
	for uid, raw := range counts {
		cache.SetRawCount(uid, raw)
	}
	store := &redistest.StatsStore{}
	locker := &redistest.Locker{}
	agg := NewAggregator(cache, store, locker)
	agg.now = func() time.Time { return time.Unix(1700000000, 0) }
	return agg, store, locker
}

func TestRunComputesDistribution(t *testing.T) {
	agg, store, _ := newAggregator(map[string]string{
		"U1": "0",
		"U2": "3",
		"U3": "10",
		"U4": "15",
		"U5": "oops",
	})
	stats, err := agg.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := model.FriendStats{
		Users:       4,
		ZeroFriends: 1,
		TenPlus:     2,
		MaxFriends:  15,
		AvgFriends:  7,
		Skipped:     1,
		UpdatedAt:   time.Unix(1700000000, 0),
	}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
	saved, found, _ := store.Load(context.Background())
	if !found || *saved != want {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestRunBlendsWithPreviousAverage(t *testing.T) {
	agg, store, _ := newAggregator(map[string]string{"U1": "4", "U2": "8"})
	_ = store.Save(context.Background(), &model.FriendStats{AvgFriends: 2})

	stats, err := agg.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 本次均值 6，与上次 2 做两点平均
	if stats.AvgFriends != 4 {
		t.Fatalf("avg = %v, want 4", stats.AvgFriends)
	}
}

func TestRunBatchSizeDoesNotChangeCounts(t *testing.T) {
	counts := make(map[string]string)
	for i := 0; i < 37; i++ {
		counts["U"+strconv.Itoa(100+i)] = strconv.Itoa(i % 13)
	}
	small, _, _ := newAggregator(counts)
	large, _, _ := newAggregator(counts)
	a, err := small.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run(1): %v", err)
	}
	b, err := large.Run(context.Background(), 1000)
	if err != nil {
		t.Fatalf("Run(1000): %v", err)
	}
	if *a != *b {
		t.Fatalf("batch size changed result: %+v vs %+v", a, b)
	}
}

func TestRunFailureKeepsPreviousStats(t *testing.T) {
	cache := redistest.NewFriendCache()
	cache.SetRawCount("U1", "5")
	cache.Err = errors.New("redis down")
	store := &redistest.StatsStore{}
	prev := &model.FriendStats{Users: 9, AvgFriends: 3}
	_ = store.Save(context.Background(), prev)

	agg := NewAggregator(cache, store, &redistest.Locker{})
	if _, err := agg.Run(context.Background(), 10); err == nil {
		t.Fatalf("expected scan error")
	}
	saved, _, _ := store.Load(context.Background())
	if *saved != *prev {
		t.Fatalf("failed run overwrote stats: %+v", saved)
	}
}

func TestRunIsExclusive(t *testing.T) {
	agg, _, locker := newAggregator(map[string]string{"U1": "1"})
	unlock, err := locker.TryLock(context.Background(), lockName, time.Minute)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := agg.Run(context.Background(), 10); !errors.Is(err, myredis.ErrLockNotAcquired) {
		t.Fatalf("err = %v", err)
	}

	// 任务处理函数把锁冲突视为成功
	job, _ := jobs.NewJob(jobs.TypeFriendStats, jobs.FriendStatsPayload{BatchSize: 10})
	if err := agg.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob while locked: %v", err)
	}

	_ = unlock(context.Background())
	if _, err := agg.Run(context.Background(), 10); err != nil {
		t.Fatalf("Run after unlock: %v", err)
	}
}

func TestLatestReportsMissingSnapshot(t *testing.T) {
	ctx := context.Background()
	agg, _, _ := newAggregator(map[string]string{"U1": "2"})
	if _, found, err := agg.Latest(ctx); err != nil || found {
		t.Fatalf("Latest before run = %v, %v", found, err)
	}
	if _, err := agg.Run(ctx, 10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats, found, err := agg.Latest(ctx)
	if err != nil || !found || stats.Users != 1 {
		t.Fatalf("Latest after run = %+v, %v, %v", stats, found, err)
	}
}

func TestHandleJobRetriesWhenRedisIsDown(t *testing.T) {
	cache := redistest.NewFriendCache()
	cache.SetRawCount("U1", "3")
	store := &redistest.StatsStore{}
	locker := &redistest.Locker{Err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")}
	agg := NewAggregator(cache, store, locker)

	job, _ := jobs.NewJob(jobs.TypeFriendStats, jobs.FriendStatsPayload{BatchSize: 10})
	err := agg.HandleJob(context.Background(), job)
	if err == nil {
		t.Fatalf("lock failure must not be reported as success")
	}
	if errors.Is(err, myredis.ErrLockNotAcquired) || !jobs.Retryable(err) {
		t.Fatalf("expected retryable infrastructure error, got %v", err)
	}
	if _, found, _ := store.Load(context.Background()); found {
		t.Fatalf("no stats should be written")
	}
}

// batchedCache 按预设批次返回扫描结果，用于模拟 SCAN 重复返回同一个键
type batchedCache struct {
	*redistest.FriendCache
	batches [][]myredis.CountEntry
}

func (c *batchedCache) ScanCounts(ctx context.Context, cursor uint64, batch int) ([]myredis.CountEntry, uint64, error) {
	next := cursor + 1
	if int(next) >= len(c.batches) {
		next = 0
	}
	return c.batches[cursor], next, nil
}

func TestRunCountsEachUserOnce(t *testing.T) {
	cache := &batchedCache{
		FriendCache: redistest.NewFriendCache(),
		batches: [][]myredis.CountEntry{
			{{UserId: "U1", Raw: "0"}},
			{{UserId: "U1", Raw: "0"}, {UserId: "U2", Raw: "12"}},
		},
	}
	agg := NewAggregator(cache, &redistest.StatsStore{}, &redistest.Locker{})
	stats, err := agg.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Users != 2 || stats.ZeroFriends != 1 || stats.TenPlus != 1 || stats.AvgFriends != 6 {
		t.Fatalf("stats = %+v", stats)
	}
}
