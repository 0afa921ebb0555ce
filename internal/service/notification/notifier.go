package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"social_profile_server/internal/dao/mysql/repository"
)

// Emitter 通知发出接口，业务 Service 只依赖这一个方法
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Sink 通知投递通道
type Sink interface {
	Deliver(ctx context.Context, msg *Message) error
}

// Notifier 解析展示名、格式化并异步投递
// 投递失败只记录日志，不影响已提交的业务操作
type Notifier struct {
	users     repository.UserRepository
	formatter Formatter
	sink      Sink
	timeout   time.Duration
}

// NewNotifier 创建通知发送器
func NewNotifier(users repository.UserRepository, sink Sink) *Notifier {
	return &Notifier{
		users:   users,
		sink:    sink,
		timeout: 5 * time.Second,
	}
}

// Emit 在后台协程中投递，调用方的 ctx 取消不会影响投递
func (n *Notifier) Emit(_ context.Context, ev Event) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("通知投递 panic", zap.Any("recover", rec))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.deliver(ctx, ev); err != nil {
			zap.L().Warn("通知投递失败",
				zap.String("type", string(ev.Type)),
				zap.String("actor", ev.ActorId),
				zap.String("target", ev.TargetId),
				zap.Error(err))
		}
	}()
}

func (n *Notifier) deliver(ctx context.Context, ev Event) error {
	actorName := ""
	if n.users != nil {
		if user, err := n.users.FindByUuid(ctx, ev.ActorId); err == nil {
			actorName = user.Nickname
		}
	}
	msg, err := n.formatter.Format(ev, actorName)
	if err != nil {
		return err
	}
	return n.sink.Deliver(ctx, msg)
}

var _ Emitter = (*Notifier)(nil)
