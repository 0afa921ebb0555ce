// Package redis 提供好友查询缓存、统计结果存储和分布式锁的 Redis 实现
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"strconv"

	"social_profile_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 初始化 Redis 连接
// 从配置文件读取连接参数并创建客户端实例
func Init() *redis.Client {
	conf := config.GetConfig()

	// 拼接地址：host:port
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: conf.JobConfig.WorkerNum, // 与任务 Worker 数量匹配
	})
}
