// Package notify 提供通知消息的投递通道
// KafkaSink 把格式化后的通知写入 Kafka，由下游的推送服务消费；LogSink 只写日志，用于单机开发
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"social_profile_server/internal/config"
	"social_profile_server/internal/service/notification"
	"social_profile_server/pkg/errorx"
)

// KafkaSink 基于 kafka-go Writer 的通知投递
type KafkaSink struct {
	producer *kafka.Writer
}

// NewKafkaSink 根据配置创建通知 Writer
func NewKafkaSink(kafkaConfig config.KafkaConfig) *KafkaSink {
	return &KafkaSink{
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(kafkaConfig.HostPort),
			Topic:                  kafkaConfig.NotificationTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           kafkaConfig.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: false,
		},
	}
}

// Deliver 按接收者分区写入，同一用户的通知保持顺序
func (s *KafkaSink) Deliver(ctx context.Context, msg *notification.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeQueueError, "序列化通知")
	}
	err = s.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.TargetId),
		Value: value,
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeQueueError, "投递通知 target=%s", msg.TargetId)
	}
	return nil
}

// Close 关闭 Writer
func (s *KafkaSink) Close() {
	if err := s.producer.Close(); err != nil {
		zap.L().Error(err.Error())
	}
}

// LogSink 只把通知写入日志
type LogSink struct{}

// Deliver 写日志
func (LogSink) Deliver(_ context.Context, msg *notification.Message) error {
	zap.L().Info("notification",
		zap.String("type", string(msg.Type)),
		zap.String("target", msg.TargetId),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.String("link", msg.Link))
	return nil
}

var (
	_ notification.Sink = (*KafkaSink)(nil)
	_ notification.Sink = LogSink{}
)
