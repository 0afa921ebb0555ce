// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"social_profile_server/internal/config"
	"social_profile_server/internal/handler"
	"social_profile_server/internal/infrastructure/logger"
	"social_profile_server/internal/infrastructure/middleware"
	"social_profile_server/internal/router"
)

// Init 初始化 HTTP 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 安全响应头，可选 HTTPS 重定向
//  4. 配置 CORS 跨域规则
//  5. 注册业务路由
func Init(conf *config.Config, handlers *handler.Handlers, admins middleware.AdminChecker) *gin.Engine {
	if conf.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	// 如果由 Nginx 处理 SSL，tlsRedirect 保持 false
	engine.Use(middleware.SecureHandler(
		conf.MainConfig.Host,
		conf.MainConfig.Port,
		conf.MainConfig.TlsRedirect,
		conf.MainConfig.Mode == "dev",
	))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = conf.MainConfig.AllowOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"*"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	router.NewRouter(handlers, admins).RegisterRoutes(engine)
	return engine
}
