// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 操作人（actor）一律由 Handler 从 Token 中取出后显式传入
package service

import (
	"context"

	"social_profile_server/internal/dto/respond"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service/board"
	"social_profile_server/internal/service/friendship"
	"social_profile_server/internal/service/moderation"
)

// UserService 用户目录查询
type UserService interface {
	// GetUserInfo 获取单个用户信息
	GetUserInfo(ctx context.Context, uuid string) (*respond.GetUserInfoRespond, error)
	// IsAdmin 是否为可用的管理员账号
	IsAdmin(ctx context.Context, uuid string) (bool, error)
}

// FriendshipService 好友关系业务接口
type FriendshipService interface {
	// SendRequest 发起好友申请，对方已向自己发起申请时直接成为好友
	SendRequest(ctx context.Context, from, to string) (model.RelationView, error)
	// AcceptRequest 接受 from 发给 actor 的申请
	AcceptRequest(ctx context.Context, actor, from string) error
	// IgnoreRequest 忽略两人之间的申请（任意方向）
	IgnoreRequest(ctx context.Context, actor, from string) error
	// RemoveFriend 解除好友关系
	RemoveFriend(ctx context.Context, actor, other string) error
	// GetRelationship 查询关系，结果相对于参数顺序
	GetRelationship(ctx context.Context, a, b string) (model.RelationView, error)
	// GetFriends 好友、收到的申请、发出的申请
	GetFriends(ctx context.Context, userId string) (*friendship.FriendLists, error)
	// AreFriends 先查缓存再查库
	AreFriends(ctx context.Context, a, b string) (bool, error)
	// FriendCount 好友数
	FriendCount(ctx context.Context, userId string) (int64, error)
}

// BoardService 留言板业务接口
type BoardService interface {
	Post(ctx context.Context, authorId, recipientId, text string, parentId *uint64) (*model.Comment, error)
	List(ctx context.Context, ownerId string, page, pageSize int) (*board.BoardPage, error)
	Delete(ctx context.Context, actor string, commentId uint64) error
}

// ModerationService 举报处理业务接口
type ModerationService interface {
	// Report 举报留言
	Report(ctx context.Context, commentId uint64, reporterId, reason string) (*model.CommentReport, error)
	// ListReports 按留言聚合的待处理举报
	ListReports(ctx context.Context, sortKey model.ReportSortKey, pageSize, offset int) (*moderation.ReportPage, error)
	// Resolve 处理一条举报，举报已被处理时返回 false
	Resolve(ctx context.Context, reportId uint64, action model.ModerationAction, actingAdmin string) (bool, error)
	// SchedulePurge 投递批量清理任务
	SchedulePurge(ctx context.Context, req moderation.PurgeRequest) error
}

// MaintenanceService 后台维护任务
type MaintenanceService interface {
	// ScheduleCacheRebuild 投递好友缓存全量重建任务
	ScheduleCacheRebuild(ctx context.Context, afterUserId string, batchSize int) error
	// ScheduleStats 投递好友统计任务
	ScheduleStats(ctx context.Context, batchSize int) error
	// LatestStats 最近一次统计结果
	LatestStats(ctx context.Context) (*model.FriendStats, bool, error)
}
