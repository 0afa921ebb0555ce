// Package board 实现个人留言板
package board

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"social_profile_server/internal/dao/mysql/repository"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service/notification"
	"social_profile_server/pkg/errorx"
)

const (
	maxTextLength   = 1000
	defaultPageSize = 20
	maxPageSize     = 100
)

// CommentPurger 删除留言的唯一路径，由 moderation 实现
type CommentPurger interface {
	PurgeComment(ctx context.Context, commentId uint64, actor string) (int64, error)
}

// BoardPage 留言板分页结果，按时间倒序
type BoardPage struct {
	Total int64           `json:"total"`
	Items []model.Comment `json:"items"`
}

type boardService struct {
	repos    *repository.Repositories
	purger   CommentPurger
	notifier notification.Emitter
}

// NewBoardService 构造函数
func NewBoardService(repos *repository.Repositories, purger CommentPurger, notifier notification.Emitter) *boardService {
	return &boardService{
		repos:    repos,
		purger:   purger,
		notifier: notifier,
	}
}

// Post 在 recipientId 的留言板上留言，parentId 非空时为回复
func (b *boardService) Post(ctx context.Context, authorId, recipientId, text string, parentId *uint64) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "留言内容不能为空")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "留言内容不能超过 %d 个字符", maxTextLength)
	}
	if err := b.requireUsers(ctx, authorId, recipientId); err != nil {
		return nil, err
	}

	var parent *model.Comment
	if parentId != nil {
		p, err := b.repos.Comment.FindById(ctx, *parentId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.ErrCommentNotFound
			}
			return nil, err
		}
		if p.RecipientId != recipientId {
			return nil, errorx.New(errorx.CodeInvalidParam, "回复的留言不在该留言板上")
		}
		parent = p
	}

	comment := &model.Comment{
		AuthorId:    authorId,
		RecipientId: recipientId,
		Text:        text,
		ParentId:    parentId,
	}
	if err := b.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	commentId := strconv.FormatUint(comment.ID, 10)
	if recipientId != authorId {
		b.notifier.Emit(ctx, notification.Event{
			Type:     notification.EventBoardComment,
			ActorId:  authorId,
			TargetId: recipientId,
			Extra:    map[string]string{"commentId": commentId},
		})
	}
	if parent != nil && parent.AuthorId != authorId && parent.AuthorId != recipientId {
		b.notifier.Emit(ctx, notification.Event{
			Type:     notification.EventBoardReply,
			ActorId:  authorId,
			TargetId: parent.AuthorId,
			Extra:    map[string]string{"commentId": commentId, "boardOwner": recipientId},
		})
	}
	return comment, nil
}

// List 分页读取留言板，page 从 1 开始
func (b *boardService) List(ctx context.Context, ownerId string, page, pageSize int) (*BoardPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	items, total, err := b.repos.Comment.ListByRecipient(ctx, ownerId, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Comment{}
	}
	return &BoardPage{Total: total, Items: items}, nil
}

// Delete 留言作者或留言板主人可以删除留言
func (b *boardService) Delete(ctx context.Context, actor string, commentId uint64) error {
	c, err := b.repos.Comment.FindById(ctx, commentId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrCommentNotFound
		}
		return err
	}
	if actor != c.AuthorId && actor != c.RecipientId {
		return errorx.ErrForbidden
	}
	closed, err := b.purger.PurgeComment(ctx, commentId, actor)
	if err != nil {
		return err
	}
	zap.L().Info("留言已删除", zap.Uint64("comment", commentId), zap.String("actor", actor), zap.Int64("closedReports", closed))
	return nil
}

func (b *boardService) requireUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		u, err := b.repos.User.FindByUuid(ctx, id)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.ErrUserNotExist
			}
			return err
		}
		if !u.Enabled() {
			return errorx.ErrUserNotExist
		}
	}
	return nil
}
