// Package database 提供数据库迁移和初始化功能
package database

import (
	"github.com/weiwangfds/notemaster/internal/logger"
	"gorm.io/gorm"
)

// Migrate 执行笔记系统相关表的数据库迁移
// 参数: db *gorm.DB - GORM数据库连接实例
// 返回值: error - 迁移失败时返回错误信息
// 用途: 创建笔记、标签、关联表，并建立必要的索引
func Migrate(db *gorm.DB) error {
	logger.Info("开始执行数据库迁移...")

	err := db.AutoMigrate(
		&Note{},    // 笔记主表
		&Tag{},     // 标签表
		&NoteTag{}, // 笔记标签关联表
	)
	if err != nil {
		return err
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建查询索引
// 用途: 优化笔记列表（按更新时间倒序）和关联查询的性能
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// 列表查询优化：最近更新的笔记排在最前
		"CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at DESC)",
		// 关联查询优化
		"CREATE INDEX IF NOT EXISTS idx_note_tags_note ON note_tags(note_id)",
		"CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_id)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.Errorf("创建索引失败: %s, 错误: %v", indexSQL, err)
			return err
		}
	}

	return nil
}

// SeedData 初始化示例数据
// 参数: db *gorm.DB - GORM数据库连接实例
// 返回值: error - 初始化失败时返回错误信息
// 用途: 为开发和测试环境提供示例数据
func SeedData(db *gorm.DB) error {
	logger.Info("开始初始化示例数据...")

	tags := []Tag{
		{Name: "工作"},
		{Name: "学习"},
		{Name: "生活"},
	}

	for _, tag := range tags {
		if err := db.FirstOrCreate(&tag, Tag{Name: tag.Name}).Error; err != nil {
			return err
		}
	}

	welcome := Note{
		Title:   "欢迎使用 NoteMaster",
		Content: "<p>这是你的第一篇笔记，开始记录吧。</p>",
	}

	if err := db.FirstOrCreate(&welcome, Note{Title: welcome.Title}).Error; err != nil {
		return err
	}

	logger.Info("示例数据初始化完成")
	return nil
}
