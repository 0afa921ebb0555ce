// Package mysql 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"social_profile_server/internal/config"
	"social_profile_server/internal/dao/mysql/repository"
	"social_profile_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 实例集合
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息并构建 DSN
//  2. 使用 GORM 建立连接（开启 TranslateError，唯一索引冲突翻译为 gorm.ErrDuplicatedKey）
//  3. AutoMigrate 迁移表结构
func Init() (*gorm.DB, *repository.Repositories) {
	conf := config.GetConfig()

	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal("连接 MySQL 失败", zap.Error(err))
	}

	// 不会删除已有字段或数据
	err = db.AutoMigrate(
		&model.UserInfo{},      // 用户信息表
		&model.Relationship{},  // 好友关系表
		&model.Comment{},       // 留言表
		&model.CommentReport{}, // 留言举报表
		&model.JobCheckpoint{}, // 批处理断点表
	)
	if err != nil {
		zap.L().Fatal("AutoMigrate 失败", zap.Error(err))
	}

	return db, repository.NewRepositories(db)
}
