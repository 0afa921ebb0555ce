// Package model 定义数据库实体模型
// 本文件定义用户信息模型，只用于存在性/状态校验和展示名解析，不承载身份认证
package model

import (
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
type UserInfo struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 用户唯一标识（对外的不透明 ID）
	// 格式：U + 时间戳随机字符串，如 "U2410180aB3dE5fG7h"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Nickname 用户昵称，通知文案中作为展示名
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// IsAdmin 管理员标志
	// 0=普通用户, 1=管理员
	IsAdmin int8 `gorm:"column:is_admin;not null;default:0;comment:是否是管理员，0.不是，1.是"`

	// Status 账号状态
	// 0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;default:0;comment:状态，0.正常，1.禁用"`
}

// 用户状态
const (
	UserStatusNormal  int8 = 0
	UserStatusDisable int8 = 1
)

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// Enabled 账号是否可用
func (u *UserInfo) Enabled() bool {
	return u.Status == UserStatusNormal
}
