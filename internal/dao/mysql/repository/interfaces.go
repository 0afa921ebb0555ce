// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"social_profile_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户目录
// 只用于存在性/状态校验和展示名解析，身份不在这里存储
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
	// ListUuidsAfter 按 UUID 升序返回 after 之后的一页用户ID（全量缓存重建使用）
	ListUuidsAfter(ctx context.Context, after string, limit int) ([]string, error)
	// Create 创建用户
	Create(ctx context.Context, user *model.UserInfo) error
}

// RelationshipRepository 好友关系数据访问接口（权威数据源）
type RelationshipRepository interface {
	// FindByPair 查找无序用户对的关系行，不存在返回 CodeNotFound
	FindByPair(ctx context.Context, a, b string) (*model.Relationship, error)
	// FindByPairForUpdate 同 FindByPair，但在事务中加行锁
	FindByPairForUpdate(ctx context.Context, a, b string) (*model.Relationship, error)
	// Create 创建关系行，同一用户对已存在时返回唯一索引冲突错误
	Create(ctx context.Context, rel *model.Relationship) error
	// UpdateState 更新关系状态
	UpdateState(ctx context.Context, id uint, state model.RelationState) error
	// Delete 删除关系行（硬删除）
	Delete(ctx context.Context, id uint) error
	// ListByUser 查询用户参与的所有关系行，按创建时间升序
	ListByUser(ctx context.Context, userId string) ([]model.Relationship, error)
	// ListAcceptedCounterparts 查询用户所有 ACCEPTED 关系的另一方
	ListAcceptedCounterparts(ctx context.Context, userId string) ([]string, error)
}

// CommentRepository 留言数据访问接口
type CommentRepository interface {
	// Create 创建留言
	Create(ctx context.Context, comment *model.Comment) error
	// FindById 根据 ID 查找留言
	FindById(ctx context.Context, id uint64) (*model.Comment, error)
	// FindByIdForUpdate 根据 ID 查找留言并加行锁
	FindByIdForUpdate(ctx context.Context, id uint64) (*model.Comment, error)
	// FindByIds 批量查找留言
	FindByIds(ctx context.Context, ids []uint64) ([]model.Comment, error)
	// ListByRecipient 分页查询留言板，最新在前
	ListByRecipient(ctx context.Context, recipientId string, offset, limit int) ([]model.Comment, int64, error)
	// ListByAuthorAfter 按主键升序查询作者在 since 之后、主键大于 afterId 的一页留言
	ListByAuthorAfter(ctx context.Context, authorId string, since time.Time, afterId uint64, limit int) ([]model.Comment, error)
	// Delete 硬删除留言，返回影响行数
	Delete(ctx context.Context, id uint64) (int64, error)
	// DetachReplies 把直接回复 parentId 的留言改为顶层留言，返回影响行数
	DetachReplies(ctx context.Context, parentId uint64) (int64, error)
}

// ReportRepository 举报数据访问接口
type ReportRepository interface {
	// Create 创建举报
	Create(ctx context.Context, report *model.CommentReport) error
	// FindById 根据 ID 查找举报
	FindById(ctx context.Context, id uint64) (*model.CommentReport, error)
	// FindByIdForUpdate 根据 ID 查找举报并加行锁
	FindByIdForUpdate(ctx context.Context, id uint64) (*model.CommentReport, error)
	// HasPending 举报人对该留言是否已有待处理举报
	HasPending(ctx context.Context, commentId uint64, reporterId string) (bool, error)
	// Resolve 处理单条待处理举报，返回影响行数（已处理过的举报返回 0）
	Resolve(ctx context.Context, id uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error)
	// ResolveAllPending 处理某留言下所有待处理举报，返回影响行数
	ResolveAllPending(ctx context.Context, commentId uint64, resolution model.ReportResolution, by string, at time.Time) (int64, error)
	// ListPendingGrouped 按留言聚合待处理举报并分页，返回本页和留言总数
	ListPendingGrouped(ctx context.Context, sort model.ReportSortKey, offset, limit int) ([]model.ReportedComment, int64, error)
	// ListPendingIds 查询若干留言下的待处理举报ID
	ListPendingIds(ctx context.Context, commentIds []uint64) (map[uint64][]uint64, error)
}

// CheckpointRepository 分页任务断点数据访问接口
type CheckpointRepository interface {
	// Get 读取断点，不存在返回 CodeNotFound
	Get(ctx context.Context, jobKey string) (*model.JobCheckpoint, error)
	// Save 写入断点（按 JobKey upsert）
	Save(ctx context.Context, cp *model.JobCheckpoint) error
	// Delete 删除断点
	Delete(ctx context.Context, jobKey string) error
}

// ==================== Repository 聚合 ====================

// TxFunc 事务执行函数
// 默认实现基于 gorm.DB.Transaction，测试可以替换为内存实现
type TxFunc func(ctx context.Context, fn func(txRepos *Repositories) error) error

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	User         UserRepository         // 用户目录
	Relationship RelationshipRepository // 好友关系
	Comment      CommentRepository      // 留言
	Report       ReportRepository       // 举报
	Checkpoint   CheckpointRepository   // 任务断点

	txFn TxFunc
}

// NewRepositories 创建所有 Repository 实例
// db: GORM 数据库实例
func NewRepositories(db *gorm.DB) *Repositories {
	repos := &Repositories{
		User:         NewUserRepository(db),
		Relationship: NewRelationshipRepository(db),
		Comment:      NewCommentRepository(db),
		Report:       NewReportRepository(db),
		Checkpoint:   NewCheckpointRepository(db),
	}
	repos.txFn = func(ctx context.Context, fn func(txRepos *Repositories) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// 使用事务 db 创建新的 Repositories 实例
			return fn(NewRepositories(tx))
		})
	}
	return repos
}

// WithTx 返回使用自定义事务执行函数的副本
func (r *Repositories) WithTx(txFn TxFunc) *Repositories {
	cp := *r
	cp.txFn = txFn
	return &cp
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	if r.txFn == nil {
		return fn(r)
	}
	return r.txFn(ctx, fn)
}
