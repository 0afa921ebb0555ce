// Package middleware 提供 gin 中间件：安全响应头、JWT 认证和管理员校验
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// SecureHandler 安全响应头中间件
// redirect 为 true 时把 HTTP 请求重定向到 host:port 上的 HTTPS；dev 模式下 secure 不做任何检查
func SecureHandler(host string, port int, redirect bool, dev bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        redirect,
		SSLHost:            host + ":" + strconv.Itoa(port),
		STSSeconds:         31536000,
		FrameDeny:          true,
		ContentTypeNosniff: true,
		IsDevelopment:      dev,
	})

	return func(c *gin.Context) {
		// 重定向时 secure 已经写好响应并返回 error
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Debug("secure middleware stopped request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
