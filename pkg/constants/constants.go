package constants

const (
	CTX_USER_ID          = "user_id"      // gin.Context 中保存当前用户ID的 key
	ACCESS_TOKEN_SUBJECT = "access_token" // Access Token 的 Subject
	TOKEN_ISSUER         = "social_profile"
	SHUTDOWN_TIMEOUT     = 10 // 优雅关闭等待时间（秒）
)
