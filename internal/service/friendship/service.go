// Package friendship 实现好友关系状态机
// 关系表是唯一权威数据源，状态变更在行锁事务中完成；
// 提交后再发通知、投递缓存同步任务，这些副作用失败不会回滚已提交的变更
package friendship

import (
	"context"

	"go.uber.org/zap"

	"social_profile_server/internal/dao/mysql/repository"
	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service/notification"
	"social_profile_server/pkg/errorx"
)

// UserSyncer 单用户缓存同步，投递失败时内联执行
type UserSyncer interface {
	SyncUser(ctx context.Context, userId string) error
}

// FriendLists 用户的三类关系列表，各自按建立时间升序
type FriendLists struct {
	Friends  []string `json:"friends"`  // 已是好友
	Incoming []string `json:"incoming"` // 别人发给我的申请
	Outgoing []string `json:"outgoing"` // 我发出的申请
}

// friendshipService 好友关系业务逻辑实现
type friendshipService struct {
	repos    *repository.Repositories
	cache    myredis.FriendCache
	queue    jobs.Submitter
	syncer   UserSyncer
	notifier notification.Emitter
}

// NewFriendshipService 构造函数
func NewFriendshipService(
	repos *repository.Repositories,
	cache myredis.FriendCache,
	queue jobs.Submitter,
	syncer UserSyncer,
	notifier notification.Emitter,
) *friendshipService {
	return &friendshipService{
		repos:    repos,
		cache:    cache,
		queue:    queue,
		syncer:   syncer,
		notifier: notifier,
	}
}

// effects 事务提交后才执行的副作用
type effects struct {
	events []notification.Event
	sync   []string
}

// commit 发出通知并投递缓存同步
func (s *friendshipService) commit(ctx context.Context, fx *effects) {
	for _, ev := range fx.events {
		s.notifier.Emit(ctx, ev)
	}
	s.enqueueSync(ctx, fx.sync...)
}

// enqueueSync 投递 friend_cache_sync；队列不可用时降级为同步执行
func (s *friendshipService) enqueueSync(ctx context.Context, userIds ...string) {
	for _, uid := range userIds {
		err := s.queue.Submit(ctx, jobs.TypeFriendCacheSync, jobs.FriendCacheSyncPayload{UserId: uid})
		if err == nil {
			continue
		}
		zap.L().Warn("投递好友缓存同步失败，改为同步执行", zap.String("user", uid), zap.Error(err))
		if err := s.syncer.SyncUser(ctx, uid); err != nil {
			// 缓存会在下一次同步或全量重建时修复
			zap.L().Error("同步好友缓存失败", zap.String("user", uid), zap.Error(err))
		}
	}
}

// requireUsers 校验用户存在且未被禁用
func (s *friendshipService) requireUsers(ctx context.Context, ids ...string) error {
	users, err := s.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(users))
	for i := range users {
		if users[i].Enabled() {
			found[users[i].Uuid] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			return errorx.Wrapf(errorx.ErrUserNotExist, errorx.CodeUserNotExist, "用户 %s 不存在或已被禁用", id)
		}
	}
	return nil
}

// lockPair 在事务中锁定用户对的关系行，不存在时返回 nil
func lockPair(ctx context.Context, tx *repository.Repositories, a, b string) (*model.Relationship, error) {
	rel, err := tx.Relationship.FindByPairForUpdate(ctx, a, b)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rel, nil
}

// SendRequest 发送好友申请
//   - 无关系：创建 REQUESTED(from→to)，通知 to
//   - 对方已向我申请：视为同意，直接变为 ACCEPTED
//   - 我已申请或已是好友：幂等，直接返回当前状态
//
// 双方同时互发申请时，后插入的一方撞上唯一索引，重跑一次事务后走"视为同意"分支
func (s *friendshipService) SendRequest(ctx context.Context, from, to string) (model.RelationView, error) {
	if from == to {
		return model.ViewNone, errorx.ErrInvalidTarget
	}
	if err := s.requireUsers(ctx, from, to); err != nil {
		return model.ViewNone, err
	}

	view, fx, err := s.sendRequestTx(ctx, from, to)
	if repository.IsTxConflict(err) {
		zap.L().Info("好友申请并发冲突，重试", zap.String("from", from), zap.String("to", to))
		view, fx, err = s.sendRequestTx(ctx, from, to)
	}
	if err != nil {
		return model.ViewNone, err
	}
	s.commit(ctx, fx)
	return view, nil
}

func (s *friendshipService) sendRequestTx(ctx context.Context, from, to string) (model.RelationView, *effects, error) {
	fx := &effects{}
	view := model.ViewNone
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		rel, err := lockPair(ctx, tx, from, to)
		if err != nil {
			return err
		}
		if rel == nil {
			rel = model.NewRelationshipRequest(from, to)
			if err := tx.Relationship.Create(ctx, rel); err != nil {
				return err
			}
			fx.events = append(fx.events, notification.Event{Type: notification.EventFriendRequest, ActorId: from, TargetId: to})
			view = model.ViewOf(rel, from, to)
			return nil
		}
		if rel.State == model.RelationRequested && rel.RequesterId == to {
			if err := tx.Relationship.UpdateState(ctx, rel.ID, model.RelationAccepted); err != nil {
				return err
			}
			rel.State = model.RelationAccepted
			fx.events = append(fx.events, notification.Event{Type: notification.EventFriendAccept, ActorId: from, TargetId: to})
			fx.sync = []string{from, to}
		}
		view = model.ViewOf(rel, from, to)
		return nil
	})
	return view, fx, err
}

// AcceptRequest 同意 from 发给 actor 的好友申请
func (s *friendshipService) AcceptRequest(ctx context.Context, actor, from string) error {
	fx := &effects{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		rel, err := lockPair(ctx, tx, actor, from)
		if err != nil {
			return err
		}
		if rel == nil || rel.State != model.RelationRequested || rel.RequesterId != from || rel.TargetId != actor {
			return errorx.ErrNoSuchRequest
		}
		if err := tx.Relationship.UpdateState(ctx, rel.ID, model.RelationAccepted); err != nil {
			return err
		}
		fx.events = append(fx.events, notification.Event{Type: notification.EventFriendAccept, ActorId: actor, TargetId: from})
		fx.sync = []string{actor, from}
		return nil
	})
	if err != nil {
		return err
	}
	s.commit(ctx, fx)
	return nil
}

// IgnoreRequest 删除两人之间的 REQUESTED 行（不区分方向，也用于撤回自己的申请）
// 行不存在或已是好友时直接成功，不发通知
func (s *friendshipService) IgnoreRequest(ctx context.Context, actor, from string) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		rel, err := lockPair(ctx, tx, actor, from)
		if err != nil || rel == nil || rel.State != model.RelationRequested {
			return err
		}
		return tx.Relationship.Delete(ctx, rel.ID)
	})
}

// RemoveFriend 解除好友关系，行不存在或仍在申请中时直接成功
func (s *friendshipService) RemoveFriend(ctx context.Context, actor, other string) error {
	fx := &effects{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		rel, err := lockPair(ctx, tx, actor, other)
		if err != nil || rel == nil || rel.State != model.RelationAccepted {
			return err
		}
		if err := tx.Relationship.Delete(ctx, rel.ID); err != nil {
			return err
		}
		fx.sync = []string{actor, other}
		return nil
	})
	if err != nil {
		return err
	}
	s.commit(ctx, fx)
	return nil
}

// GetRelationship 查询 (a, b) 的关系视图
func (s *friendshipService) GetRelationship(ctx context.Context, a, b string) (model.RelationView, error) {
	rel, err := s.repos.Relationship.FindByPair(ctx, a, b)
	if err != nil {
		if errorx.IsNotFound(err) {
			return model.ViewNone, nil
		}
		return model.ViewNone, err
	}
	return model.ViewOf(rel, a, b), nil
}

// GetFriends 从关系表读取三类列表
func (s *friendshipService) GetFriends(ctx context.Context, userId string) (*FriendLists, error) {
	rels, err := s.repos.Relationship.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	lists := &FriendLists{
		Friends:  []string{},
		Incoming: []string{},
		Outgoing: []string{},
	}
	for i := range rels {
		rel := &rels[i]
		other := rel.Counterpart(userId)
		switch {
		case rel.State == model.RelationAccepted:
			lists.Friends = append(lists.Friends, other)
		case rel.RequesterId == userId:
			lists.Outgoing = append(lists.Outgoing, other)
		default:
			lists.Incoming = append(lists.Incoming, other)
		}
	}
	return lists, nil
}

// AreFriends 优先查缓存；缓存未命中或不可用时回源关系表
func (s *friendshipService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	isFriend, cached, err := s.cache.IsFriend(ctx, a, b)
	if err != nil {
		zap.L().Warn("好友缓存不可用，回源数据库", zap.String("user", a), zap.Error(err))
	} else if cached {
		return isFriend, nil
	}
	// 缓存可用但没有该用户，顺便补齐
	warm := err == nil

	view, err := s.GetRelationship(ctx, a, b)
	if err != nil {
		return false, err
	}
	if warm {
		s.enqueueSync(ctx, a)
	}
	return view == model.ViewAccepted, nil
}

// FriendCount 好友数量，缓存未命中时回源关系表
func (s *friendshipService) FriendCount(ctx context.Context, userId string) (int64, error) {
	n, cached, err := s.cache.FriendCount(ctx, userId)
	if err != nil {
		zap.L().Warn("好友缓存不可用，回源数据库", zap.String("user", userId), zap.Error(err))
	} else if cached {
		return n, nil
	}
	friends, err := s.repos.Relationship.ListAcceptedCounterparts(ctx, userId)
	if err != nil {
		return 0, err
	}
	return int64(len(friends)), nil
}
