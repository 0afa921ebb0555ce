// Package jobs
// kafka_queue.go
// 分布式模式下的任务队列：kafka-go Writer 投递，消费组 Reader 消费
// 处理完成后才提交 offset，进程崩溃时未提交的任务会被重新投递
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"social_profile_server/internal/config"
	"social_profile_server/pkg/errorx"
)

// KafkaQueue 基于 Kafka 的任务队列
type KafkaQueue struct {
	dispatcher  *Dispatcher
	producer    *kafka.Writer
	consumer    *kafka.Reader // Start 时才创建，只投递的进程不加入消费组
	readerConf  kafka.ReaderConfig
	maxAttempts int
}

// NewKafkaQueue 根据配置创建 Kafka 任务队列
func NewKafkaQueue(dispatcher *Dispatcher, kafkaConfig config.KafkaConfig, maxAttempts int) *KafkaQueue {
	return &KafkaQueue{
		dispatcher: dispatcher,
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaConfig.HostPort),
			Topic:                  kafkaConfig.JobTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           kafkaConfig.Timeout * time.Second,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: false,
		},
		readerConf: kafka.ReaderConfig{
			Brokers:     []string{kafkaConfig.HostPort},
			Topic:       kafkaConfig.JobTopic,
			GroupID:     kafkaConfig.GroupID,
			StartOffset: kafka.FirstOffset,
		},
		maxAttempts: maxAttempts,
	}
}

// Submit 序列化任务并写入 Kafka
func (q *KafkaQueue) Submit(ctx context.Context, t Type, payload any) error {
	job, err := NewJob(t, payload)
	if err != nil {
		return err
	}
	return q.publish(ctx, job)
}

func (q *KafkaQueue) publish(ctx context.Context, job *Job) error {
	value, err := json.Marshal(job)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeQueueError, "序列化任务 type=%s", job.Type)
	}
	err = q.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(job.Id, 10)),
		Value: value,
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeQueueError, "投递任务 type=%s", job.Type)
	}
	return nil
}

// Start 启动消费循环
func (q *KafkaQueue) Start(ctx context.Context) {
	q.consumer = kafka.NewReader(q.readerConf)
	go func() {
		for {
			msg, err := q.consumer.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				zap.L().Error("读取任务失败", zap.Error(err))
				continue
			}
			q.handle(ctx, msg)
			if err := q.consumer.CommitMessages(ctx, msg); err != nil {
				zap.L().Error("提交任务 offset 失败", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}()
	zap.L().Info("Kafka job consumer started", zap.String("topic", q.readerConf.Topic))
}

// handle 处理单条消息，可重试的失败以 attempt+1 重新写入主题
func (q *KafkaQueue) handle(ctx context.Context, msg kafka.Message) {
	var job Job
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		zap.L().Error("无法解析的任务消息，跳过", zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	err := q.dispatcher.Dispatch(ctx, &job)
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
	zap.L().Warn("任务失败，重新投递", fields...)
	if err := q.publish(ctx, job.Next()); err != nil {
		zap.L().Error("任务重新投递失败", zap.Int64("id", job.Id), zap.Error(err))
	}
}

// Close 关闭 Writer 和 Reader
func (q *KafkaQueue) Close() error {
	if err := q.producer.Close(); err != nil {
		zap.L().Error("关闭任务 Writer 失败", zap.Error(err))
	}
	if q.consumer == nil {
		return nil
	}
	return q.consumer.Close()
}

var _ Queue = (*KafkaQueue)(nil)
