// Package jobs
// channel_queue.go
// 单机模式下的任务队列：带缓冲的 channel + 固定数量的 Worker
// 缓冲区满时降级为同步执行，失败的任务延迟后重新入队
package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"social_profile_server/pkg/errorx"
)

// ErrQueueClosed 队列已关闭
var ErrQueueClosed = errorx.New(errorx.CodeQueueError, "任务队列已关闭")

// ChannelQueue 基于 channel 的任务队列
type ChannelQueue struct {
	dispatcher  *Dispatcher
	taskChan    chan *Job
	workerNum   int
	maxAttempts int
	retryDelay  time.Duration

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	baseCtx context.Context
}

// NewChannelQueue 创建 channel 任务队列
func NewChannelQueue(dispatcher *Dispatcher, workerNum, bufferSize, maxAttempts int) *ChannelQueue {
	return &ChannelQueue{
		dispatcher:  dispatcher,
		taskChan:    make(chan *Job, bufferSize),
		workerNum:   workerNum,
		maxAttempts: maxAttempts,
		retryDelay:  200 * time.Millisecond,
		baseCtx:     context.Background(),
	}
}

// Start 启动 Worker Pool
func (q *ChannelQueue) Start(ctx context.Context) {
	q.baseCtx = ctx
	for i := 0; i < q.workerNum; i++ {
		q.wg.Add(1)
		go q.startWorker()
	}
	zap.L().Info("Job Workers started", zap.Int("workers", q.workerNum), zap.Int("buffer", cap(q.taskChan)))
}

// startWorker 单个 Worker 消费循环，channel 关闭后退出
func (q *ChannelQueue) startWorker() {
	defer q.wg.Done()
	for job := range q.taskChan {
		q.handle(job)
	}
}

// Submit 提交任务
func (q *ChannelQueue) Submit(ctx context.Context, t Type, payload any) error {
	job, err := NewJob(t, payload)
	if err != nil {
		return err
	}
	return q.enqueue(job)
}

func (q *ChannelQueue) enqueue(job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.taskChan <- job:
	default:
		// 降级：同步执行
		zap.L().Warn("Job channel full, executing synchronously", zap.String("type", string(job.Type)))
		q.handle(job)
	}
	return nil
}

// handle 执行任务，可重试的失败延迟后重新入队
func (q *ChannelQueue) handle(job *Job) {
	err := q.dispatcher.Dispatch(q.baseCtx, job)
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("type", string(job.Type)),
		zap.Int64("id", job.Id),
		zap.Int("attempt", job.Attempt),
		zap.Error(err),
	}
	if !Retryable(err) || job.Attempt >= q.maxAttempts {
		zap.L().Error("任务失败，放弃重试", fields...)
		return
	}
	zap.L().Warn("任务失败，稍后重试", fields...)
	next := job.Next()
	time.AfterFunc(q.retryDelay*time.Duration(job.Attempt), func() {
		if err := q.enqueue(next); err != nil {
			zap.L().Error("任务重新入队失败", zap.String("type", string(next.Type)), zap.Int64("id", next.Id), zap.Error(err))
		}
	})
}

// Close 关闭队列，等待已入队的任务处理完毕
func (q *ChannelQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.taskChan)
	q.mu.Unlock()
	q.wg.Wait()
	return nil
}

var _ Queue = (*ChannelQueue)(nil)
