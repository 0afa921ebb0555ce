package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"social_profile_server/internal/dao/mysql/repository/repotest"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Type
	args []any
}

func (q *recordingQueue) Submit(ctx context.Context, t jobs.Type, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, t)
	q.args = append(q.args, payload)
	return nil
}

func newService(users ...string) (*moderationService, *repotest.Store, *recordingQueue) {
	store := repotest.NewStore()
	for _, u := range users {
		store.AddUser(u, u)
	}
	q := &recordingQueue{}
	return NewModerationService(store.Repositories(), q), store, q
}

var since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestReportCreatesPendingReport(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2")
	c := store.AddComment("U1", "U2", "hello", since)

	report, err := svc.Report(ctx, c.ID, "U2", "spam")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	got, ok := store.Report(report.ID)
	if !ok || got.Resolution != model.ResolutionPending || got.CommentId != c.ID {
		t.Fatalf("unexpected report row: %+v", got)
	}
}

func TestReportRejectsMissingCommentAndDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2", "U3")
	c := store.AddComment("U1", "U2", "hello", since)

	if _, err := svc.Report(ctx, c.ID+100, "U2", ""); !errors.Is(err, errorx.ErrCommentNotFound) {
		t.Fatalf("missing comment: got %v", err)
	}
	if _, err := svc.Report(ctx, c.ID, "U2", ""); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, err := svc.Report(ctx, c.ID, "U2", "again"); !errors.Is(err, errorx.ErrDuplicateReport) {
		t.Fatalf("duplicate report: got %v", err)
	}
	// 其他用户仍然可以举报同一条留言
	if _, err := svc.Report(ctx, c.ID, "U3", ""); err != nil {
		t.Fatalf("second reporter: %v", err)
	}
	if _, err := svc.Report(ctx, c.ID, "ghost", ""); !errors.Is(err, errorx.ErrUserNotExist) {
		t.Fatalf("unknown reporter: got %v", err)
	}
}

func TestReportAfterDismissIsAllowed(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2")
	c := store.AddComment("U1", "U2", "hello", since)

	first, err := svc.Report(ctx, c.ID, "U2", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if _, err := svc.Resolve(ctx, first.ID, model.ActionDismiss, "admin"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := svc.Report(ctx, c.ID, "U2", ""); err != nil {
		t.Fatalf("report after dismiss: %v", err)
	}
}

func TestDeleteResolvesAllPendingReports(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2", "U3")
	c := store.AddComment("U1", "U2", "offensive", since)
	r1, _ := svc.Report(ctx, c.ID, "U2", "")
	r2, _ := svc.Report(ctx, c.ID, "U3", "")

	ok, err := svc.Resolve(ctx, r1.ID, model.ActionDelete, "admin")
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if _, exists := store.Comment(c.ID); exists {
		t.Fatalf("comment should be deleted")
	}
	for _, id := range []uint64{r1.ID, r2.ID} {
		rep, _ := store.Report(id)
		if rep.Resolution != model.ResolutionDeleted || rep.ResolvedBy != "admin" || rep.ResolvedAt == nil {
			t.Fatalf("report %d not closed: %+v", id, rep)
		}
	}

	// 第二条举报已经被一并关闭，重放返回 false
	ok, err = svc.Resolve(ctx, r2.ID, model.ActionDelete, "admin")
	if err != nil || ok {
		t.Fatalf("replayed Resolve = %v, %v", ok, err)
	}
}

func TestDismissOnlyTouchesOneReport(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2", "U3")
	c := store.AddComment("U1", "U2", "borderline", since)
	r1, _ := svc.Report(ctx, c.ID, "U2", "")
	r2, _ := svc.Report(ctx, c.ID, "U3", "")

	ok, err := svc.Resolve(ctx, r1.ID, model.ActionDismiss, "admin")
	if err != nil || !ok {
		t.Fatalf("Resolve = %v, %v", ok, err)
	}
	if _, exists := store.Comment(c.ID); !exists {
		t.Fatalf("dismiss must keep the comment")
	}
	if rep, _ := store.Report(r1.ID); rep.Resolution != model.ResolutionDismissed {
		t.Fatalf("r1 = %s", rep.Resolution)
	}
	if rep, _ := store.Report(r2.ID); rep.Resolution != model.ResolutionPending {
		t.Fatalf("r2 = %s", rep.Resolution)
	}
}

func TestResolveErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	if _, err := svc.Resolve(ctx, 999, model.ActionDismiss, "admin"); !errors.Is(err, errorx.ErrReportNotFound) {
		t.Fatalf("missing report: got %v", err)
	}
	if _, err := svc.Resolve(ctx, 1, model.ModerationAction("ban"), "admin"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("bad action: got %v", err)
	}
}

func TestListReportsGroupsByComment(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2", "U3", "U4")
	busy := store.AddComment("U1", "U2", "busy", since)
	quiet := store.AddComment("U1", "U3", "quiet", since)

	svc.Report(ctx, busy.ID, "U2", "")
	svc.Report(ctx, busy.ID, "U3", "")
	svc.Report(ctx, quiet.ID, "U4", "")

	page, err := svc.ListReports(ctx, model.ReportSortVolume, 10, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	first := page.Items[0]
	if first.CommentId != busy.ID || first.ReportCount != 2 || len(first.ReportIds) != 2 || first.Text != "busy" {
		t.Fatalf("first item = %+v", first)
	}

	// 按时间排序时最近被举报的留言排在前面
	page, err = svc.ListReports(ctx, model.ReportSortDate, 10, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if page.Items[0].CommentId != quiet.ID {
		t.Fatalf("date sort first = %d", page.Items[0].CommentId)
	}

	if _, err := svc.ListReports(ctx, model.ReportSortKey("oldest"), 10, 0); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("bad sort key: got %v", err)
	}
}

func TestListReportsClampsPageSize(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2")
	for i := 0; i < 3; i++ {
		c := store.AddComment("U1", "U2", "x", since)
		svc.Report(ctx, c.ID, "U2", "")
	}
	page, err := svc.ListReports(ctx, model.ReportSortVolume, 0, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 {
		t.Fatalf("page size 0 should clamp to 1, got %d items", len(page.Items))
	}
}

func seedComments(store *repotest.Store, author string, n int) {
	for i := 0; i < n; i++ {
		store.AddComment(author, "U2", "spam", since.Add(time.Duration(i)*time.Minute))
	}
}

func TestPurgeAllCommentsPagesThroughEverything(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("bot", "U1", "U2")
	seedComments(store, "U1", 250)
	keep := store.AddComment("U2", "U1", "reply", since)
	old := store.AddComment("U1", "U2", "before window", since.Add(-time.Hour))

	res, err := svc.PurgeAllComments(ctx, PurgeRequest{TargetUserId: "U1", Since: since, ActingBot: "bot", BatchSize: 100})
	if err != nil {
		t.Fatalf("PurgeAllComments: %v", err)
	}
	if !res.Completed || res.Pages != 3 || res.Processed != 250 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}
	if got := store.CommentCount(); got != 2 {
		t.Fatalf("remaining comments = %d, want 2", got)
	}
	if _, ok := store.Comment(keep.ID); !ok {
		t.Fatalf("other author's comment was deleted")
	}
	if _, ok := store.Comment(old.ID); !ok {
		t.Fatalf("comment before since was deleted")
	}
	if _, ok := store.Checkpoint(res.JobKey); ok {
		t.Fatalf("checkpoint should be removed after completion")
	}
}

func TestPurgeAllCommentsResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("bot", "U1", "U2")
	seedComments(store, "U1", 250)

	var mu sync.Mutex
	deletes := 0
	store.FailCommentDelete = func(id uint64) error {
		mu.Lock()
		deletes++
		mu.Unlock()
		return nil
	}
	saves := 0
	crash := errors.New("killed")
	store.SaveCheckpointHook = func(cp *model.JobCheckpoint) error {
		saves++
		if saves == 2 {
			return crash
		}
		return nil
	}

	req := PurgeRequest{TargetUserId: "U1", Since: since, ActingBot: "bot", BatchSize: 100}
	res, err := svc.PurgeAllComments(ctx, req)
	if !errors.Is(err, crash) {
		t.Fatalf("expected crash after page 2, got %v", err)
	}
	if res.Completed || res.Processed != 200 {
		t.Fatalf("crashed result = %+v", res)
	}
	cp, ok := store.Checkpoint(PurgeJobKey("U1", since))
	if !ok || cp.Processed != 200 {
		t.Fatalf("checkpoint = %+v, %v", cp, ok)
	}

	store.SaveCheckpointHook = nil
	res, err = svc.PurgeAllComments(ctx, req)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !res.Completed || res.Pages != 1 || res.Processed != 250 {
		t.Fatalf("resumed result = %+v", res)
	}
	if deletes != 250 {
		t.Fatalf("delete calls = %d, want 250 (no page processed twice)", deletes)
	}
	if store.CommentCount() != 0 {
		t.Fatalf("remaining = %d", store.CommentCount())
	}
}

func TestPurgeAllCommentsSkipsFailedItems(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("bot", "U1", "U2")
	seedComments(store, "U1", 5)
	store.FailCommentDelete = func(id uint64) error {
		if id == 3 {
			return errorx.New(errorx.CodeDBError, "lock wait timeout")
		}
		return nil
	}

	res, err := svc.PurgeAllComments(ctx, PurgeRequest{TargetUserId: "U1", Since: since, ActingBot: "bot", BatchSize: 2})
	if err != nil {
		t.Fatalf("PurgeAllComments: %v", err)
	}
	if res.Processed != 4 || res.Failed != 1 || !res.Completed {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := store.Comment(3); !ok {
		t.Fatalf("failed comment should remain")
	}
}

func TestPurgeAllCommentsValidates(t *testing.T) {
	svc, _, _ := newService()
	if _, err := svc.PurgeAllComments(context.Background(), PurgeRequest{ActingBot: "bot"}); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("missing target: got %v", err)
	}
}

func TestSchedulePurgeSubmitsJob(t *testing.T) {
	svc, _, q := newService()
	err := svc.SchedulePurge(context.Background(), PurgeRequest{TargetUserId: "U1", Since: since, ActingBot: "bot", BatchSize: 5000})
	if err != nil {
		t.Fatalf("SchedulePurge: %v", err)
	}
	if len(q.jobs) != 1 || q.jobs[0] != jobs.TypeCommentPurge {
		t.Fatalf("jobs = %v", q.jobs)
	}
	if p := q.args[0].(jobs.CommentPurgePayload); p.BatchSize != maxPurgeBatchSize {
		t.Fatalf("batch size = %d", p.BatchSize)
	}
}

func TestResolveJobHandler(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2")
	c := store.AddComment("U1", "U2", "x", since)
	r, _ := svc.Report(ctx, c.ID, "U2", "")

	job, err := jobs.NewJob(jobs.TypeCommentResolve, jobs.CommentResolvePayload{ReportId: r.ID, Action: model.ActionDelete, ActingAdmin: "admin"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.HandleResolveJob(ctx, job); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	missing, _ := jobs.NewJob(jobs.TypeCommentResolve, jobs.CommentResolvePayload{ReportId: 404, Action: model.ActionDelete, ActingAdmin: "admin"})
	if err := svc.HandleResolveJob(ctx, missing); jobs.Retryable(err) || err == nil {
		t.Fatalf("missing report should fail permanently, got %v", err)
	}
}

func TestPurgeCommentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("U1", "U2", "U3")
	c := store.AddComment("U1", "U2", "spam", since)
	_, _ = svc.Report(ctx, c.ID, "U2", "")
	_, _ = svc.Report(ctx, c.ID, "U3", "")

	closed, err := svc.PurgeComment(ctx, c.ID, "bot")
	if err != nil || closed != 2 {
		t.Fatalf("PurgeComment = %d, %v", closed, err)
	}
	if _, exists := store.Comment(c.ID); exists {
		t.Fatalf("comment should be deleted")
	}

	closed, err = svc.PurgeComment(ctx, c.ID, "bot")
	if err != nil || closed != 0 {
		t.Fatalf("second PurgeComment = %d, %v", closed, err)
	}
}

func TestSchedulePurgeUsesConfiguredBatch(t *testing.T) {
	svc, _, q := newService()
	svc.WithPurgeBatchSize(250)
	if err := svc.SchedulePurge(context.Background(), PurgeRequest{TargetUserId: "U1", ActingBot: "bot"}); err != nil {
		t.Fatalf("SchedulePurge: %v", err)
	}
	if p := q.args[0].(jobs.CommentPurgePayload); p.BatchSize != 250 {
		t.Fatalf("batch size = %d", p.BatchSize)
	}
}
