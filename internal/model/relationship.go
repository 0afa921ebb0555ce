// Package model 定义数据库实体模型
// 本文件定义好友关系模型，每个无序用户对最多一行
package model

import (
	"time"
)

// RelationState 关系行状态
// 不存在 "rejected" 状态，拒绝/忽略直接删除行
type RelationState string

const (
	RelationRequested RelationState = "REQUESTED" // 申请中，RequesterId 为发起人
	RelationAccepted  RelationState = "ACCEPTED"  // 已成为好友
)

// Relationship 好友关系模型
// 对应数据库 relationship 表
type Relationship struct {
	ID uint `gorm:"primaryKey"`

	// UserLow / UserHigh 按字典序排列的无序用户对
	// 唯一索引保证同一对用户最多一行，并发的反向申请会在这里冲突
	UserLow  string `gorm:"column:user_low;type:char(20);not null;uniqueIndex:uk_relationship_pair,priority:1;comment:较小的用户ID"`
	UserHigh string `gorm:"column:user_high;type:char(20);not null;uniqueIndex:uk_relationship_pair,priority:2;index;comment:较大的用户ID"`

	// RequesterId 发起人，仅在 REQUESTED 状态下有方向意义
	RequesterId string `gorm:"column:requester_id;type:char(20);not null;index;comment:申请人ID"`
	TargetId    string `gorm:"column:target_id;type:char(20);not null;index;comment:被申请人ID"`

	State RelationState `gorm:"column:state;type:varchar(16);not null;index;comment:状态，REQUESTED/ACCEPTED"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (Relationship) TableName() string {
	return "relationship"
}

// OrderedPair 返回无序用户对的规范顺序
func OrderedPair(a, b string) (low, high string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// NewRelationshipRequest 构造一条 REQUESTED 行
func NewRelationshipRequest(from, to string) *Relationship {
	low, high := OrderedPair(from, to)
	return &Relationship{
		UserLow:     low,
		UserHigh:    high,
		RequesterId: from,
		TargetId:    to,
		State:       RelationRequested,
	}
}

// Counterpart 返回关系中 userId 的另一方
func (r *Relationship) Counterpart(userId string) string {
	if r.UserLow == userId {
		return r.UserHigh
	}
	return r.UserLow
}

// RelationView 关系视图，相对于 (a, b) 的参数顺序
type RelationView string

const (
	ViewNone         RelationView = "NONE"
	ViewRequestedByA RelationView = "REQUESTED_BY_A"
	ViewRequestedByB RelationView = "REQUESTED_BY_B"
	ViewAccepted     RelationView = "ACCEPTED"
)

// ViewOf 计算 rel 相对 (a, b) 的视图，rel 为 nil 或不属于 (a, b) 时为 NONE
func ViewOf(rel *Relationship, a, b string) RelationView {
	if rel == nil {
		return ViewNone
	}
	switch rel.State {
	case RelationAccepted:
		return ViewAccepted
	case RelationRequested:
		if rel.RequesterId == a {
			return ViewRequestedByA
		}
		if rel.RequesterId == b {
			return ViewRequestedByB
		}
	}
	return ViewNone
}
