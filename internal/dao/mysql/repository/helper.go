// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package repository

import (
	"errors"

	"social_profile_server/pkg/errorx"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL 错误码
const (
	mysqlErrLockWaitTimeout = 1205 // 锁等待超时
	mysqlErrDeadlock        = 1213 // 死锁，事务已被回滚
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// IsDuplicateKey 判断是否为唯一索引冲突
// 依赖 gorm.Config.TranslateError=true 把驱动错误翻译成 gorm.ErrDuplicatedKey
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsTxConflict 判断事务是否因并发冲突失败，这类失败重新执行一次事务即可
// 包括唯一索引冲突、死锁和锁等待超时
func IsTxConflict(err error) bool {
	if IsDuplicateKey(err) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDeadlock || myErr.Number == mysqlErrLockWaitTimeout
	}
	return false
}

// clampLimit 限制分页大小
func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
