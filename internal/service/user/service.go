// Package user 提供用户目录查询
// 用户的注册和认证由宿主平台负责，这里只读 user_info 表
package user

import (
	"context"

	"social_profile_server/internal/dao/mysql/repository"
	"social_profile_server/internal/dto/respond"
	"social_profile_server/internal/model"
	"social_profile_server/pkg/errorx"
)

// userInfoService 用户查询实现
type userInfoService struct {
	repos *repository.Repositories
}

// NewUserService 构造函数
func NewUserService(repos *repository.Repositories) *userInfoService {
	return &userInfoService{repos: repos}
}

func (u *userInfoService) find(ctx context.Context, uuid string) (*model.UserInfo, error) {
	user, err := u.repos.User.FindByUuid(ctx, uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrUserNotExist
		}
		return nil, err
	}
	return user, nil
}

// GetUserInfo 获取单个用户信息
func (u *userInfoService) GetUserInfo(ctx context.Context, uuid string) (*respond.GetUserInfoRespond, error) {
	user, err := u.find(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return &respond.GetUserInfoRespond{
		Uuid:      user.Uuid,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt.Format("2006.01.02"),
		IsAdmin:   user.IsAdmin,
		Status:    user.Status,
	}, nil
}

// IsAdmin 是否为可用的管理员账号
func (u *userInfoService) IsAdmin(ctx context.Context, uuid string) (bool, error) {
	user, err := u.find(ctx, uuid)
	if err != nil {
		return false, err
	}
	return user.IsAdmin == 1 && user.Enabled(), nil
}
