// Package moderation 实现留言举报与处理
// 单条删除（管理员处理举报、留言板删除）和批量清理走同一条 PurgeComment 路径，副作用完全一致：
// 硬删除留言，关闭该留言所有待处理举报，不发送任何通知
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"social_profile_server/internal/dao/mysql/repository"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

const (
	maxReasonLength     = 200
	maxReportPageSize   = 100
	defaultPurgeBatch   = 100
	maxPurgeBatchSize   = 1000
	purgeJobKeyTemplate = "purge:%s:%d"
)

// ReportedCommentView 举报列表中的一项：一条留言及其所有待处理举报
type ReportedCommentView struct {
	CommentId       uint64    `json:"commentId"`
	AuthorId        string    `json:"authorId"`
	RecipientId     string    `json:"recipientId"`
	Text            string    `json:"text"`
	ReportCount     int64     `json:"reportCount"`
	ReportIds       []uint64  `json:"reportIds"`
	FirstReportedAt time.Time `json:"firstReportedAt"`
	LastReportedAt  time.Time `json:"lastReportedAt"`
}

// ReportPage 举报列表分页结果，Total 为有待处理举报的留言数
type ReportPage struct {
	Total int64                 `json:"total"`
	Items []ReportedCommentView `json:"items"`
}

// PurgeRequest 批量清理参数
type PurgeRequest struct {
	TargetUserId string
	Summary      string
	Since        time.Time
	ActingBot    string
	BatchSize    int
}

// PurgeResult 批量清理结果（跨多次运行累计）
type PurgeResult struct {
	JobKey     string `json:"jobKey"`
	LastSeenId uint64 `json:"lastSeenId"`
	Pages      int    `json:"pages"` // 本次运行处理的页数
	Processed  int64  `json:"processed"`
	Failed     int64  `json:"failed"`
	Completed  bool   `json:"completed"`
}

// moderationService 举报处理业务逻辑实现
type moderationService struct {
	repos      *repository.Repositories
	queue      jobs.Submitter
	purgeBatch int // 请求未指定分页大小时使用
	now        func() time.Time
}

// NewModerationService 构造函数
func NewModerationService(repos *repository.Repositories, queue jobs.Submitter) *moderationService {
	return &moderationService{
		repos:      repos,
		queue:      queue,
		purgeBatch: defaultPurgeBatch,
		now:        time.Now,
	}
}

// WithPurgeBatchSize 设置批量清理的默认分页大小
func (m *moderationService) WithPurgeBatchSize(n int) *moderationService {
	if n > 0 {
		m.purgeBatch = n
	}
	return m
}

// Report 举报留言；同一举报人对同一留言只能有一条待处理举报
func (m *moderationService) Report(ctx context.Context, commentId uint64, reporterId, reason string) (*model.CommentReport, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "举报理由不能超过 %d 个字符", maxReasonLength)
	}
	if _, err := m.repos.User.FindByUuid(ctx, reporterId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUserNotExist
		}
		return nil, err
	}

	var report *model.CommentReport
	err := m.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		// 锁住留言行，串行化同一留言上的并发举报
		if _, err := tx.Comment.FindByIdForUpdate(ctx, commentId); err != nil {
			if errorx.IsNotFound(err) {
				return errorx.ErrCommentNotFound
			}
			return err
		}
		dup, err := tx.Report.HasPending(ctx, commentId, reporterId)
		if err != nil {
			return err
		}
		if dup {
			return errorx.ErrDuplicateReport
		}
		report = &model.CommentReport{
			CommentId:  commentId,
			ReporterId: reporterId,
			Reason:     reason,
			Resolution: model.ResolutionPending,
		}
		return tx.Report.Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports 按留言聚合待处理举报
func (m *moderationService) ListReports(ctx context.Context, sortKey model.ReportSortKey, pageSize, offset int) (*ReportPage, error) {
	if _, ok := model.ParseReportSortKey(string(sortKey)); !ok {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "不支持的排序方式 %q", sortKey)
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxReportPageSize {
		pageSize = maxReportPageSize
	}
	if offset < 0 {
		offset = 0
	}

	groups, total, err := m.repos.Report.ListPendingGrouped(ctx, sortKey, offset, pageSize)
	if err != nil {
		return nil, err
	}
	page := &ReportPage{Total: total, Items: make([]ReportedCommentView, 0, len(groups))}
	if len(groups) == 0 {
		return page, nil
	}

	commentIds := make([]uint64, len(groups))
	for i, g := range groups {
		commentIds[i] = g.CommentId
	}
	reportIds, err := m.repos.Report.ListPendingIds(ctx, commentIds)
	if err != nil {
		return nil, err
	}
	comments, err := m.repos.Comment.FindByIds(ctx, commentIds)
	if err != nil {
		return nil, err
	}
	byId := make(map[uint64]*model.Comment, len(comments))
	for i := range comments {
		byId[comments[i].ID] = &comments[i]
	}

	for _, g := range groups {
		item := ReportedCommentView{
			CommentId:       g.CommentId,
			ReportCount:     g.ReportCount,
			ReportIds:       reportIds[g.CommentId],
			FirstReportedAt: g.FirstReportedAt,
			LastReportedAt:  g.LastReportedAt,
		}
		if c, ok := byId[g.CommentId]; ok {
			item.AuthorId = c.AuthorId
			item.RecipientId = c.RecipientId
			item.Text = c.Text
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// Resolve 处理一条举报
//   - dismiss：只把这一条举报标记为 DISMISSED，留言和其他举报不变
//   - delete：走 PurgeComment，删除留言并把所有待处理举报标记为 DELETED
//
// 举报已被处理过时返回 false（任务重放），举报不存在返回 ReportNotFound
func (m *moderationService) Resolve(ctx context.Context, reportId uint64, action model.ModerationAction, actingAdmin string) (bool, error) {
	if _, ok := model.ParseModerationAction(string(action)); !ok {
		return false, errorx.Newf(errorx.CodeInvalidParam, "不支持的处理动作 %q", action)
	}
	if actingAdmin == "" {
		return false, errorx.New(errorx.CodeInvalidParam, "处理人不能为空")
	}

	resolved := false
	at := m.now()
	err := m.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		report, err := tx.Report.FindByIdForUpdate(ctx, reportId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.ErrReportNotFound
			}
			return err
		}
		if report.Resolution != model.ResolutionPending {
			return nil
		}
		switch action {
		case model.ActionDismiss:
			n, err := tx.Report.Resolve(ctx, reportId, model.ResolutionDismissed, actingAdmin, at)
			if err != nil {
				return err
			}
			resolved = n > 0
		case model.ActionDelete:
			n, err := purgeCommentTx(ctx, tx, report.CommentId, actingAdmin, at)
			if err != nil {
				return err
			}
			resolved = n > 0
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	zap.L().Info("举报已处理",
		zap.Uint64("report", reportId),
		zap.String("action", string(action)),
		zap.String("admin", actingAdmin),
		zap.Bool("resolved", resolved))
	return resolved, nil
}

// PurgeComment 删除一条留言并关闭其所有待处理举报，重复执行是安全的
// 返回被关闭的举报数
func (m *moderationService) PurgeComment(ctx context.Context, commentId uint64, actor string) (int64, error) {
	var closed int64
	err := m.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		n, err := purgeCommentTx(ctx, tx, commentId, actor, m.now())
		closed = n
		return err
	})
	return closed, err
}

func purgeCommentTx(ctx context.Context, tx *repository.Repositories, commentId uint64, actor string, at time.Time) (int64, error) {
	if _, err := tx.Comment.FindByIdForUpdate(ctx, commentId); err != nil && !errorx.IsNotFound(err) {
		return 0, err
	}
	closed, err := tx.Report.ResolveAllPending(ctx, commentId, model.ResolutionDeleted, actor, at)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Comment.Delete(ctx, commentId); err != nil {
		return 0, err
	}
	// 回复保留，改为顶层留言
	if _, err := tx.Comment.DetachReplies(ctx, commentId); err != nil {
		return 0, err
	}
	return closed, nil
}

// PurgeJobKey 批量清理任务的断点键，同一作者同一起始时间共享断点
func PurgeJobKey(targetUserId string, since time.Time) string {
	return fmt.Sprintf(purgeJobKeyTemplate, targetUserId, since.Unix())
}

func (m *moderationService) normalizePurge(req *PurgeRequest) error {
	if req.TargetUserId == "" || req.ActingBot == "" {
		return errorx.New(errorx.CodeInvalidParam, "清理对象和执行人不能为空")
	}
	if req.BatchSize <= 0 {
		req.BatchSize = m.purgeBatch
	}
	if req.BatchSize > maxPurgeBatchSize {
		req.BatchSize = maxPurgeBatchSize
	}
	return nil
}

// PurgeAllComments 按主键升序分页删除作者在 Since 之后的所有留言
// 每页处理完写一次断点，重跑时从断点之后继续；单条失败记录日志后跳过
func (m *moderationService) PurgeAllComments(ctx context.Context, req PurgeRequest) (*PurgeResult, error) {
	if err := m.normalizePurge(&req); err != nil {
		return nil, err
	}
	key := PurgeJobKey(req.TargetUserId, req.Since)

	cp, err := m.repos.Checkpoint.Get(ctx, key)
	if err != nil {
		if !errorx.IsNotFound(err) {
			return nil, err
		}
		cp = &model.JobCheckpoint{JobKey: key}
	}
	result := &PurgeResult{
		JobKey:     key,
		LastSeenId: cp.LastSeenId,
		Processed:  cp.Processed,
		Failed:     cp.Failed,
	}
	if cp.LastSeenId > 0 {
		zap.L().Info("从断点继续清理留言", zap.String("key", key), zap.Uint64("lastSeenId", cp.LastSeenId))
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		comments, err := m.repos.Comment.ListByAuthorAfter(ctx, req.TargetUserId, req.Since, result.LastSeenId, req.BatchSize)
		if err != nil {
			return result, err
		}
		if len(comments) == 0 {
			break
		}

		for i := range comments {
			id := comments[i].ID
			if _, err := m.PurgeComment(ctx, id, req.ActingBot); err != nil {
				zap.L().Warn("清理留言失败，跳过",
					zap.String("key", key),
					zap.Error(errorx.Wrapf(err, errorx.CodePartialBatchFailure, "清理留言 %d", id)))
				result.Failed++
			} else {
				result.Processed++
			}
			result.LastSeenId = id
		}
		result.Pages++

		cp.LastSeenId = result.LastSeenId
		cp.Processed = result.Processed
		cp.Failed = result.Failed
		if err := m.repos.Checkpoint.Save(ctx, cp); err != nil {
			return result, err
		}
		if len(comments) < req.BatchSize {
			break
		}
	}

	if err := m.repos.Checkpoint.Delete(ctx, key); err != nil {
		zap.L().Warn("删除清理断点失败", zap.String("key", key), zap.Error(err))
	}
	result.Completed = true
	zap.L().Info("留言清理完成",
		zap.String("target", req.TargetUserId),
		zap.String("summary", req.Summary),
		zap.String("bot", req.ActingBot),
		zap.Int64("processed", result.Processed),
		zap.Int64("failed", result.Failed))
	return result, nil
}

// SchedulePurge 校验参数后投递 comment_purge 任务
func (m *moderationService) SchedulePurge(ctx context.Context, req PurgeRequest) error {
	if err := m.normalizePurge(&req); err != nil {
		return err
	}
	return m.queue.Submit(ctx, jobs.TypeCommentPurge, jobs.CommentPurgePayload{
		TargetUserId: req.TargetUserId,
		Summary:      req.Summary,
		Since:        req.Since,
		ActingBot:    req.ActingBot,
		BatchSize:    req.BatchSize,
	})
}
