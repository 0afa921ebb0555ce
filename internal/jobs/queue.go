package jobs

import (
	"social_profile_server/internal/config"
)

// NewQueue 根据配置选择队列实现
func NewQueue(dispatcher *Dispatcher, conf *config.Config) Queue {
	if conf.JobConfig.Mode == "kafka" {
		return NewKafkaQueue(dispatcher, conf.KafkaConfig, conf.JobConfig.MaxAttempts)
	}
	return NewChannelQueue(dispatcher, conf.JobConfig.WorkerNum, conf.JobConfig.BufferSize, conf.JobConfig.MaxAttempts)
}
