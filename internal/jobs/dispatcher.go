package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"social_profile_server/pkg/errorx"
)

// Handler 任务处理函数
type Handler func(ctx context.Context, job *Job) error

// Submitter 任务提交接口，Service 层只依赖这一个方法
type Submitter interface {
	Submit(ctx context.Context, t Type, payload any) error
}

// Queue 任务队列
// 支持两种实现：ChannelQueue（单机）和 KafkaQueue（分布式）
type Queue interface {
	Submitter
	// Start 启动消费
	Start(ctx context.Context)
	// Close 停止消费并释放资源
	Close() error
}

// permanentError 标记不应重试的错误
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记错误为不可重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryable 判断失败的任务是否应该重新投递
// 只有基础设施错误和未分类错误会重试，业务校验错误重试也不会成功
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	return errorx.IsStorageUnavailable(err) || errorx.GetCode(err) == errorx.CodeServerBusy
}

// Dispatcher 按任务类型路由到处理函数
type Dispatcher struct {
	handlers map[Type]Handler
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type]Handler)}
}

// Register 注册处理函数，同一类型重复注册会覆盖
func (d *Dispatcher) Register(t Type, h Handler) {
	d.handlers[t] = h
}

// Dispatch 执行任务，处理函数中的 panic 被转换为不可重试错误
func (d *Dispatcher) Dispatch(ctx context.Context, job *Job) (err error) {
	h, ok := d.handlers[job.Type]
	if !ok {
		return Permanent(errorx.Newf(errorx.CodeInvalidParam, "未知任务类型 %s", job.Type))
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("任务处理 panic", zap.String("type", string(job.Type)), zap.Int64("id", job.Id), zap.Any("recover", rec))
			err = Permanent(fmt.Errorf("job %s panic: %v", job.Type, rec))
		}
	}()
	return h(ctx, job)
}
