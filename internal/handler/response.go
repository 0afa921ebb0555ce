package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"social_profile_server/pkg/constants"
	"social_profile_server/pkg/errorx"
)

// ResponseData 统一响应结构 {code,msg,data}，HTTP 状态码始终为 200
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
	Data any `json:"data"`
}

func reply(c *gin.Context, code int, msg, data any) {
	c.JSON(http.StatusOK, ResponseData{Code: code, Msg: msg, Data: data})
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	reply(c, errorx.CodeSuccess, "success", data)
}

// HandleError 业务错误原样返回错误码和消息
// 基础设施错误（数据库/缓存/队列）和未知错误记日志后统一返回服务繁忙，不向客户端暴露底层信息
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && !errorx.IsStorageUnavailable(err) {
		reply(c, codeErr.Code, codeErr.Msg, nil)
		return
	}

	zap.L().Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("actor", currentUser(c)),
		zap.Error(err),
	)
	reply(c, errorx.ErrServerBusy.Code, errorx.ErrServerBusy.Msg, nil)
}

// HandleParamError 参数绑定失败：校验错误按字段翻译，其余（JSON 格式错误等）返回通用提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		reply(c, errorx.CodeInvalidParam, trimStructPrefix(validationErrs.Translate(Trans)), nil)
		return
	}
	zap.L().Debug("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	reply(c, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg, nil)
}

// currentUser 当前请求的操作人，由 JWTAuth 中间件写入
func currentUser(c *gin.Context) string {
	return c.GetString(constants.CTX_USER_ID)
}
