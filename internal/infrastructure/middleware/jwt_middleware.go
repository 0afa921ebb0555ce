package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social_profile_server/pkg/constants"
	"social_profile_server/pkg/errorx"
	"social_profile_server/pkg/util/jwt"
)

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户ID存入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "请先登录")
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Token 格式错误，请使用 Bearer Token")
			return
		}

		// 3. 验证 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}

		// 4. 验证是否为 Access Token
		if claims.Subject != constants.ACCESS_TOKEN_SUBJECT || claims.UserID == "" {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(constants.CTX_USER_ID, claims.UserID)
		c.Next()
	}
}

// AdminChecker 判断用户是否为管理员
type AdminChecker interface {
	IsAdmin(ctx context.Context, uuid string) (bool, error)
}

// AdminOnly 管理员校验中间件，必须挂在 JWTAuth 之后
func AdminOnly(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetString(constants.CTX_USER_ID)
		ok, err := checker.IsAdmin(c.Request.Context(), userId)
		if err != nil && !errorx.IsNotFound(err) && errorx.GetCode(err) != errorx.CodeUserNotExist {
			zap.L().Error("admin check failed", zap.String("user", userId), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"code": errorx.ErrServerBusy.Code,
				"msg":  errorx.ErrServerBusy.Msg,
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": errorx.CodeForbidden,
				"msg":  errorx.ErrForbidden.Msg,
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
