// Package repotest 提供 Repository 接口的内存实现，供 Service 层测试使用
// 行为与 gorm 实现保持一致：不存在返回 CodeNotFound，唯一索引冲突返回 gorm.ErrDuplicatedKey
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"social_profile_server/internal/dao/mysql/repository"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

// Store 所有内存表，互斥锁同时充当事务锁
type Store struct {
	mu    sync.Mutex // 保护以下所有字段
	txMu  sync.Mutex // 串行化事务
	clock time.Time

	users         map[string]*model.UserInfo
	relationships map[[2]string]*model.Relationship
	comments      map[uint64]*model.Comment
	reports       map[uint64]*model.CommentReport
	checkpoints   map[string]*model.JobCheckpoint
	nextId        uint64

	// BeforeRelationshipCreate 在关系行写入前调用，用于模拟并发插入
	BeforeRelationshipCreate func(rel *model.Relationship)
	// FailCommentDelete 返回非 nil 时留言删除失败
	FailCommentDelete func(id uint64) error
	// SaveCheckpointHook 在断点写入后调用，返回错误模拟进程在该页之后崩溃
	SaveCheckpointHook func(cp *model.JobCheckpoint) error
}

// NewStore 创建内存表
func NewStore() *Store {
	return &Store{
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         make(map[string]*model.UserInfo),
		relationships: make(map[[2]string]*model.Relationship),
		comments:      make(map[uint64]*model.Comment),
		reports:       make(map[uint64]*model.CommentReport),
		checkpoints:   make(map[string]*model.JobCheckpoint),
	}
}

// Repositories 返回基于内存表的 Repository 聚合，事务串行执行
func (s *Store) Repositories() *repository.Repositories {
	repos := &repository.Repositories{
		User:         &userRepo{s},
		Relationship: &relationshipRepo{s},
		Comment:      &commentRepo{s},
		Report:       &reportRepo{s},
		Checkpoint:   &checkpointRepo{s},
	}
	return repos.WithTx(func(ctx context.Context, fn func(txRepos *repository.Repositories) error) error {
		s.txMu.Lock()
		defer s.txMu.Unlock()
		return fn(repos)
	})
}

// now 单调递增的时钟，保证创建时间可排序
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() uint64 {
	s.nextId++
	return s.nextId
}

// AddUser 添加用户
func (s *Store) AddUser(uuid, nickname string) *model.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.UserInfo{Uuid: uuid, Nickname: nickname}
	s.users[uuid] = u
	return u
}

// Relationship 读取关系行快照
func (s *Store) Relationship(a, b string) (model.Relationship, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := model.OrderedPair(a, b)
	rel, ok := s.relationships[[2]string{low, high}]
	if !ok {
		return model.Relationship{}, false
	}
	return *rel, true
}

// RelationshipCount 关系行数
func (s *Store) RelationshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.relationships)
}

// AddComment 直接写入留言，id 按写入顺序递增
func (s *Store) AddComment(author, recipient, text string, createdAt time.Time) *model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Comment{ID: s.id(), AuthorId: author, RecipientId: recipient, Text: text, CreatedAt: createdAt}
	s.comments[c.ID] = c
	return c
}

// Comment 读取留言
func (s *Store) Comment(id uint64) (model.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, false
	}
	return *c, true
}

// CommentCount 留言条数
func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

// Report 读取举报
func (s *Store) Report(id uint64) (model.CommentReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return model.CommentReport{}, false
	}
	return *r, true
}

// Checkpoint 读取断点
func (s *Store) Checkpoint(key string) (model.JobCheckpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.checkpoints[key]
	if !ok {
		return model.JobCheckpoint{}, false
	}
	return *cp, true
}

func notFound(what string) error {
	return errorx.Wrap(gorm.ErrRecordNotFound, errorx.CodeNotFound, what)
}

// ==================== User ====================

type userRepo struct{ s *Store }

func (r *userRepo) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uuid]
	if !ok {
		return nil, notFound("user " + uuid)
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.UserInfo
	for _, id := range uuids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *userRepo) ListUuidsAfter(ctx context.Context, after string, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id := range r.s.users {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.UserInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Uuid]; ok {
		return errorx.Wrap(gorm.ErrDuplicatedKey, errorx.CodeDBError, "create user")
	}
	cp := *user
	r.s.users[user.Uuid] = &cp
	return nil
}

// ==================== Relationship ====================

type relationshipRepo struct{ s *Store }

func (r *relationshipRepo) FindByPair(ctx context.Context, a, b string) (*model.Relationship, error) {
	rel, ok := r.s.Relationship(a, b)
	if !ok {
		return nil, notFound("relationship")
	}
	return &rel, nil
}

func (r *relationshipRepo) FindByPairForUpdate(ctx context.Context, a, b string) (*model.Relationship, error) {
	return r.FindByPair(ctx, a, b)
}

func (r *relationshipRepo) Create(ctx context.Context, rel *model.Relationship) error {
	if hook := r.s.BeforeRelationshipCreate; hook != nil {
		hook(rel)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]string{rel.UserLow, rel.UserHigh}
	if _, ok := r.s.relationships[key]; ok {
		return errorx.Wrap(gorm.ErrDuplicatedKey, errorx.CodeDBError, "create relationship")
	}
	rel.ID = uint(r.s.id())
	rel.CreatedAt = r.s.now()
	rel.UpdatedAt = rel.CreatedAt
	cp := *rel
	r.s.relationships[key] = &cp
	return nil
}

// InsertRelationship 绕过钩子直接写入关系行
func (s *Store) InsertRelationship(rel *model.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel.ID = uint(s.id())
	rel.CreatedAt = s.now()
	cp := *rel
	s.relationships[[2]string{rel.UserLow, rel.UserHigh}] = &cp
}

func (r *relationshipRepo) UpdateState(ctx context.Context, id uint, state model.RelationState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rel := range r.s.relationships {
		if rel.ID == id {
			rel.State = state
			rel.UpdatedAt = r.s.now()
			return nil
		}
	}
	return nil
}

func (r *relationshipRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, rel := range r.s.relationships {
		if rel.ID == id {
			delete(r.s.relationships, key)
		}
	}
	return nil
}

func (r *relationshipRepo) ListByUser(ctx context.Context, userId string) ([]model.Relationship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Relationship
	for _, rel := range r.s.relationships {
		if rel.UserLow == userId || rel.UserHigh == userId {
			out = append(out, *rel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *relationshipRepo) ListAcceptedCounterparts(ctx context.Context, userId string) ([]string, error) {
	rels, _ := r.ListByUser(ctx, userId)
	friends := make([]string, 0, len(rels))
	for i := range rels {
		if rels[i].State == model.RelationAccepted {
			friends = append(friends, rels[i].Counterpart(userId))
		}
	}
	return friends, nil
}

// ==================== Comment ====================

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.id()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.s.now()
	}
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *commentRepo) FindById(ctx context.Context, id uint64) (*model.Comment, error) {
	c, ok := r.s.Comment(id)
	if !ok {
		return nil, notFound("comment")
	}
	return &c, nil
}

func (r *commentRepo) FindByIdForUpdate(ctx context.Context, id uint64) (*model.Comment, error) {
	return r.FindById(ctx, id)
}

func (r *commentRepo) FindByIds(ctx context.Context, ids []uint64) ([]model.Comment, error) {
	var out []model.Comment
	for _, id := range ids {
		if c, ok := r.s.Comment(id); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *commentRepo) ListByRecipient(ctx context.Context, recipientId string, offset, limit int) ([]model.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Comment
	for _, c := range r.s.comments {
		if c.RecipientId == recipientId {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	return page(all, offset, limit), total, nil
}

func (r *commentRepo) ListByAuthorAfter(ctx context.Context, authorId string, since time.Time, afterId uint64, limit int) ([]model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Comment
	for _, c := range r.s.comments {
		if c.AuthorId == authorId && !c.CreatedAt.Before(since) && c.ID > afterId {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, 0, limit), nil
}

func (r *commentRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	if fail := r.s.FailCommentDelete; fail != nil {
		if err := fail(id); err != nil {
			return 0, err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return 0, nil
	}
	delete(r.s.comments, id)
	return 1, nil
}

func (r *commentRepo) DetachReplies(ctx context.Context, parentId uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.comments {
		if c.ParentId != nil && *c.ParentId == parentId {
			c.ParentId = nil
			n++
		}
	}
	return n, nil
}

// ==================== Report ====================

type reportRepo struct{ s *Store }

func (r *reportRepo) Create(ctx context.Context, report *model.CommentReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report.ID = r.s.id()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = r.s.now()
	}
	cp := *report
	r.s.reports[report.ID] = &cp
	return nil
}

func (r *reportRepo) FindById(ctx context.Context, id uint64) (*model.CommentReport, error) {
	rep, ok := r.s.Report(id)
	if !ok {
		return nil, notFound("report")
	}
	return &rep, nil
}

func (r *reportRepo) FindByIdForUpdate(ctx context.Context, id uint64) (*model.CommentReport, error) {
	return r.FindById(ctx, id)
}

func (r *reportRepo) HasPending(ctx context.Context, commentId uint64, reporterId string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.CommentId == commentId && rep.ReporterId == reporterId && rep.Resolution == model.ResolutionPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *reportRepo) Resolve(ctx context.Context, id uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok || rep.Resolution != model.ResolutionPending {
		return 0, nil
	}
	resolve(rep, resolution, by, at)
	return 1, nil
}

func (r *reportRepo) ResolveAllPending(ctx context.Context, commentId uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.CommentId == commentId && rep.Resolution == model.ResolutionPending {
			resolve(rep, resolution, by, at)
			n++
		}
	}
	return n, nil
}

func resolve(rep *model.CommentReport, resolution model.ReportResolution, by string, at time.Time) {
	rep.Resolution = resolution
	rep.ResolvedBy = by
	t := at
	rep.ResolvedAt = &t
}

func (r *reportRepo) ListPendingGrouped(ctx context.Context, sortKey model.ReportSortKey, offset, limit int) ([]model.ReportedComment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	groups := make(map[uint64]*model.ReportedComment)
	for _, rep := range r.s.reports {
		if rep.Resolution != model.ResolutionPending {
			continue
		}
		g, ok := groups[rep.CommentId]
		if !ok {
			g = &model.ReportedComment{CommentId: rep.CommentId, FirstReportedAt: rep.CreatedAt, LastReportedAt: rep.CreatedAt}
			groups[rep.CommentId] = g
		}
		g.ReportCount++
		if rep.CreatedAt.Before(g.FirstReportedAt) {
			g.FirstReportedAt = rep.CreatedAt
		}
		if rep.CreatedAt.After(g.LastReportedAt) {
			g.LastReportedAt = rep.CreatedAt
		}
	}
	all := make([]model.ReportedComment, 0, len(groups))
	for _, g := range groups {
		all = append(all, *g)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if sortKey == model.ReportSortVolume && a.ReportCount != b.ReportCount {
			return a.ReportCount > b.ReportCount
		}
		if !a.LastReportedAt.Equal(b.LastReportedAt) {
			return a.LastReportedAt.After(b.LastReportedAt)
		}
		return a.CommentId > b.CommentId
	})
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *reportRepo) ListPendingIds(ctx context.Context, commentIds []uint64) (map[uint64][]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uint64]bool, len(commentIds))
	for _, id := range commentIds {
		want[id] = true
	}
	out := make(map[uint64][]uint64)
	for _, rep := range r.s.reports {
		if want[rep.CommentId] && rep.Resolution == model.ResolutionPending {
			out[rep.CommentId] = append(out[rep.CommentId], rep.ID)
		}
	}
	for _, ids := range out {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out, nil
}

// ==================== Checkpoint ====================

type checkpointRepo struct{ s *Store }

func (r *checkpointRepo) Get(ctx context.Context, jobKey string) (*model.JobCheckpoint, error) {
	cp, ok := r.s.Checkpoint(jobKey)
	if !ok {
		return nil, notFound("checkpoint " + jobKey)
	}
	return &cp, nil
}

func (r *checkpointRepo) Save(ctx context.Context, cp *model.JobCheckpoint) error {
	r.s.mu.Lock()
	c := *cp
	c.UpdatedAt = r.s.now()
	r.s.checkpoints[cp.JobKey] = &c
	hook := r.s.SaveCheckpointHook
	r.s.mu.Unlock()
	if hook != nil {
		return hook(&c)
	}
	return nil
}

func (r *checkpointRepo) Delete(ctx context.Context, jobKey string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.checkpoints, jobKey)
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
