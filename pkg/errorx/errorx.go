package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// Is 按业务错误码比较，使 errors.Is(err, errorx.ErrNoSuchRequest) 对包装过的同码错误成立
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "用户不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "用户 %s 不存在", userId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// 业务状态码常量定义
const (
	CodeSuccess         = 1000 // 成功
	CodeInvalidParam    = 1001 // 请求参数错误
	CodeUserNotExist    = 1003 // 用户不存在
	CodeServerBusy      = 1005 // 服务繁忙
	CodeUnauthorized    = 1006 // 未授权/认证失败
	CodeForbidden       = 1007 // 无权操作
	CodeNotFound        = 1008 // 资源不存在
	CodeDBError         = 1010 // 数据库错误
	CodeCacheError      = 1011 // 缓存错误
	CodeQueueError      = 1012 // 任务队列错误
	CodeInvalidTarget   = 2001 // 不能以自己为目标
	CodeNoSuchRequest   = 2002 // 没有对应的好友申请
	CodeDuplicateReport = 2101 // 重复举报
	CodeReportNotFound  = 2102 // 举报不存在
	CodeCommentNotFound = 2103 // 留言不存在
	// CodePartialBatchFailure 批处理中个别条目失败，整批继续
	CodePartialBatchFailure = 2201
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam     = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy       = New(CodeServerBusy, "服务繁忙")
	ErrUserNotExist     = New(CodeUserNotExist, "用户不存在")
	ErrForbidden        = New(CodeForbidden, "无权执行该操作")
	ErrInvalidTarget    = New(CodeInvalidTarget, "不能对自己执行该操作")
	ErrNoSuchRequest    = New(CodeNoSuchRequest, "没有待处理的好友申请")
	ErrDuplicateReport  = New(CodeDuplicateReport, "你已经举报过该留言")
	ErrReportNotFound   = New(CodeReportNotFound, "举报不存在")
	ErrCommentNotFound  = New(CodeCommentNotFound, "留言不存在")
	ErrPartialBatchFail = New(CodePartialBatchFailure, "批处理部分条目失败")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// IsStorageUnavailable 判断是否为基础设施错误（数据库/缓存/队列）
// 这类错误由调用方或任务框架重试，Service 层不做本地重试
func IsStorageUnavailable(err error) bool {
	switch GetCode(err) {
	case CodeDBError, CodeCacheError, CodeQueueError:
		return true
	}
	return false
}
