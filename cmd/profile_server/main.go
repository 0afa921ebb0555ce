package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"social_profile_server/internal/config"
	dao "social_profile_server/internal/dao/mysql"
	myredis "social_profile_server/internal/dao/redis"
	"social_profile_server/internal/handler"
	"social_profile_server/internal/https_server"
	"social_profile_server/internal/infrastructure/logger"
	"social_profile_server/internal/service"
	"social_profile_server/pkg/constants"
	"social_profile_server/pkg/util/jwt"
	"social_profile_server/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.AppName, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	db, repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	rdb := myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花 ID
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if err := snowflake.Init(conf.SnowflakeConfig.MachineID); err != nil {
		zap.L().Fatal("初始化雪花节点失败", zap.Error(err))
	}

	// 6. 初始化 Service 层并启动任务消费
	svc := service.NewServices(repos, rdb, conf)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	zap.L().Info("Service 层初始化成功", zap.String("jobMode", conf.JobConfig.Mode))

	// 7. 初始化 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化参数校验翻译失败", zap.Error(err))
	}
	engine := https_server.Init(conf, handler.NewHandlers(svc), svc.User)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.SHUTDOWN_TIMEOUT*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务器关闭失败", zap.Error(err))
	}

	// 先停止接收新任务，再等待在途任务完成
	cancel()
	svc.Close()

	if err := rdb.Close(); err != nil {
		zap.L().Error("关闭 Redis 失败", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zap.L().Info("服务器已关闭")
}
