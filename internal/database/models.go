// Package database 定义了数据库相关的模型和连接管理
// 包含笔记、标签及其关联关系三个核心数据模型
package database

import (
	"time"
)

// Note 笔记模型
// 存储用户创建的笔记，内容为富文本标记字符串
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`           // 主键ID，自增，由服务端分配
	Title     string    `gorm:"not null;size:200" json:"title"` // 笔记标题，必填
	Content   string    `gorm:"type:text" json:"content"`       // 笔记内容，富文本标记，可为空
	CreatedAt time.Time `json:"created_at"`                     // 笔记创建时间
	UpdatedAt time.Time `json:"updated_at"`                     // 笔记最后修改时间

	// 关联关系
	Tags []Tag `gorm:"many2many:note_tags;" json:"tags"` // 多对多关联标签
}

// TableName 指定Note模型对应的数据库表名
func (Note) TableName() string {
	return "notes"
}

// Tag 标签模型
// 用于对笔记进行分类和标记，名称区分大小写且唯一
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`                     // 主键ID，自增
	Name      string    `gorm:"not null;uniqueIndex;size:100" json:"name"` // 标签名称，必填且唯一
	CreatedAt time.Time `json:"created_at"`                               // 标签创建时间
	UpdatedAt time.Time `json:"updated_at"`                               // 标签最后修改时间

	// 关联关系
	Notes []Note `gorm:"many2many:note_tags;" json:"notes,omitempty"` // 多对多关联笔记
}

// TableName 指定Tag模型对应的数据库表名
func (Tag) TableName() string {
	return "tags"
}

// NoteTag 笔记标签关联模型
// 管理笔记与标签之间的多对多关系，(note_id, tag_id)组合唯一
type NoteTag struct {
	NoteID    uint      `gorm:"primaryKey;autoIncrement:false" json:"note_id"` // 笔记ID，联合主键
	TagID     uint      `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`  // 标签ID，联合主键
	CreatedAt time.Time `json:"created_at"`                                    // 关联创建时间
}

// TableName 指定NoteTag模型对应的数据库表名
func (NoteTag) TableName() string {
	return "note_tags"
}
