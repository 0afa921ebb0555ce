// Package jobs 定义后台任务的契约、投递队列和分发器
// 队列语义为至少一次、无序，所有处理函数必须幂等
package jobs

import (
	"encoding/json"
	"time"

	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
	"social_profile_server/pkg/util/snowflake"
)

// Type 任务类型
type Type string

const (
	TypeFriendCacheSync    Type = "friend_cache_sync"    // 同步单个用户的好友缓存
	TypeFriendCacheRebuild Type = "friend_cache_rebuild" // 全量重建好友缓存
	TypeFriendStats        Type = "friend_stats"         // 好友数量统计
	TypeCommentPurge       Type = "comment_purge"        // 批量清理某用户的留言
	TypeCommentResolve     Type = "comment_resolve"      // 处理单条举报
)

// FriendCacheSyncPayload friend_cache_sync 任务参数
type FriendCacheSyncPayload struct {
	UserId string `json:"userId"`
}

// FriendCacheRebuildPayload friend_cache_rebuild 任务参数
type FriendCacheRebuildPayload struct {
	AfterUserId string `json:"afterUserId"` // 从该用户ID之后开始，空串表示从头开始
	BatchSize   int    `json:"batchSize"`
}

// FriendStatsPayload friend_stats 任务参数
type FriendStatsPayload struct {
	BatchSize int `json:"batchSize"`
}

// CommentPurgePayload comment_purge 任务参数
type CommentPurgePayload struct {
	TargetUserId string    `json:"targetUserId"`
	Summary      string    `json:"summary"`
	Since        time.Time `json:"since"`
	ActingBot    string    `json:"actingBot"`
	BatchSize    int       `json:"batchSize"`
}

// CommentResolvePayload comment_resolve 任务参数
type CommentResolvePayload struct {
	ReportId    uint64                 `json:"reportId"`
	Action      model.ModerationAction `json:"action"`
	ActingAdmin string                 `json:"actingAdmin"`
}

// Job 队列中传输的任务信封
type Job struct {
	Id        int64           `json:"id"`
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"` // 第几次执行，从 1 开始
	CreatedAt time.Time       `json:"createdAt"`
}

// NewJob 构造任务信封
func NewJob(t Type, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeInvalidParam, "序列化任务参数 type=%s", t)
	}
	return &Job{
		Id:        snowflake.GenerateID(),
		Type:      t,
		Payload:   data,
		Attempt:   1,
		CreatedAt: time.Now(),
	}, nil
}

// Decode 解析任务参数，格式错误的任务不再重试
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return Permanent(errorx.Wrapf(err, errorx.CodeInvalidParam, "解析任务参数 type=%s id=%d", j.Type, j.Id))
	}
	return nil
}

// Next 返回下一次重试的任务副本
func (j *Job) Next() *Job {
	next := *j
	next.Attempt++
	return &next
}
