package moderation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"social_profile_server/internal/jobs"
	"social_profile_server/pkg/errorx"
)

// HandlePurgeJob comment_purge 任务处理函数
// 失败时断点已保存，队列重试会从断点继续
func (m *moderationService) HandlePurgeJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.CommentPurgePayload
	if err := job.Decode(&payload); err != nil {
		return err
	}
	_, err := m.PurgeAllComments(ctx, PurgeRequest{
		TargetUserId: payload.TargetUserId,
		Summary:      payload.Summary,
		Since:        payload.Since,
		ActingBot:    payload.ActingBot,
		BatchSize:    payload.BatchSize,
	})
	if errorx.GetCode(err) == errorx.CodeInvalidParam {
		return jobs.Permanent(err)
	}
	return err
}

// HandleResolveJob comment_resolve 任务处理函数
func (m *moderationService) HandleResolveJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.CommentResolvePayload
	if err := job.Decode(&payload); err != nil {
		return err
	}
	ok, err := m.Resolve(ctx, payload.ReportId, payload.Action, payload.ActingAdmin)
	if errors.Is(err, errorx.ErrReportNotFound) || errorx.GetCode(err) == errorx.CodeInvalidParam {
		return jobs.Permanent(err)
	}
	if err != nil {
		return err
	}
	if !ok {
		zap.L().Info("举报已被处理，忽略重复任务", zap.Uint64("report", payload.ReportId), zap.Int64("job", job.Id))
	}
	return nil
}

// Register 注册任务处理函数
func (m *moderationService) Register(d *jobs.Dispatcher) {
	d.Register(jobs.TypeCommentPurge, m.HandlePurgeJob)
	d.Register(jobs.TypeCommentResolve, m.HandleResolveJob)
}
