// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"

	TlsRedirect  bool     `toml:"tlsRedirect"`  // 是否把 HTTP 重定向到 HTTPS
	AllowOrigins []string `toml:"allowOrigins"` // CORS 允许的来源，为空时允许所有
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 配置
// 任务队列和通知事件都走 Kafka（JobMode 为 "kafka" 时）
type KafkaConfig struct {
	HostPort          string        `toml:"hostPort"`          // Kafka 服务器地址，如 "localhost:9092"
	JobTopic          string        `toml:"jobTopic"`          // 后台任务主题
	NotificationTopic string        `toml:"notificationTopic"` // 通知事件主题
	GroupID           string        `toml:"groupId"`           // 任务消费组
	Partition         int           `toml:"partition"`         // 分区数
	Timeout           time.Duration `toml:"timeout"`           // 超时时间（秒）
}

// JobConfig 后台任务配置
type JobConfig struct {
	Mode             string `toml:"mode"`             // 任务队列模式："channel" 或 "kafka"
	WorkerNum        int    `toml:"workerNum"`        // channel 模式下的 Worker 数量
	BufferSize       int    `toml:"bufferSize"`       // channel 模式下的缓冲区大小
	MaxAttempts      int    `toml:"maxAttempts"`      // 单个任务最大执行次数（至少一次语义下的重试上限）
	RebuildBatchSize int    `toml:"rebuildBatchSize"` // 全量缓存重建的分页大小
	StatsBatchSize   int    `toml:"statsBatchSize"`   // 统计任务 SCAN 的分页大小
	PurgeBatchSize   int    `toml:"purgeBatchSize"`   // 批量清理留言的分页大小
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JobConfig       `toml:"jobConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Decode 从字符串解析配置（测试和工具使用）
func Decode(data string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.Decode(data, conf); err != nil {
		return nil, err
	}
	conf.applyDefaults()
	return conf, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.applyDefaults()
	}
	return config
}

// applyDefaults 为未配置的任务参数填充默认值
func (c *Config) applyDefaults() {
	if c.JobConfig.Mode == "" {
		c.JobConfig.Mode = "channel"
	}
	if c.JobConfig.WorkerNum <= 0 {
		c.JobConfig.WorkerNum = 8
	}
	if c.JobConfig.BufferSize <= 0 {
		c.JobConfig.BufferSize = 1000
	}
	if c.JobConfig.MaxAttempts <= 0 {
		c.JobConfig.MaxAttempts = 5
	}
	if c.JobConfig.RebuildBatchSize <= 0 {
		c.JobConfig.RebuildBatchSize = 500
	}
	if c.JobConfig.StatsBatchSize <= 0 {
		c.JobConfig.StatsBatchSize = 500
	}
	if c.JobConfig.PurgeBatchSize <= 0 {
		c.JobConfig.PurgeBatchSize = 100
	}
	if c.KafkaConfig.GroupID == "" {
		c.KafkaConfig.GroupID = "profile_jobs"
	}
	if c.KafkaConfig.Timeout <= 0 {
		c.KafkaConfig.Timeout = 5
	}
}
