package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username           string    `gorm:"uniqueIndex;size:64"`
	PasswordHash       string    `gorm:"size:255"`
	MustChangePassword bool      `gorm:"default:false"`
	Projects           []Project `gorm:"constraint:OnDelete:CASCADE"`
}

// 项目生命周期状态。
const (
	ProjectStatusDraft    = "draft"
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project 表示用户的求职项目，是 CV 与求职信的分组容器。
// 所有权（UserID）创建后不可变更；删除时必须级联清理全部归属文档。
type Project struct {
	gorm.Model
	Title        string        `gorm:"size:255;not null"`
	Description  string        `gorm:"size:2048"`
	Status       string        `gorm:"size:32;default:draft;index"`
	Color        string        `gorm:"size:32"`
	UserID       uint          `gorm:"index"`
	User         User          `gorm:"constraint:OnDelete:CASCADE"`
	CVDocuments  []CVDocument  `gorm:"constraint:OnDelete:CASCADE"`
	CoverLetters []CoverLetter `gorm:"constraint:OnDelete:CASCADE"`
}

// CVDocument 表示一份简历文档。
// ProjectID 上的唯一索引保证每个项目至多一份 CV（upsert 以项目为键）。
// UserID 冗余存储所有者，避免每次鉴权都回查项目。
// 各分区以 JSONB 存储，结构化类型见 internal/cv。
type CVDocument struct {
	gorm.Model
	ProjectID      uint           `gorm:"uniqueIndex"`
	Project        Project        `gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint           `gorm:"index"`
	Title          string         `gorm:"size:255"`
	TemplateID     *uint          `gorm:"index"`
	PersonalInfo   datatypes.JSON `gorm:"type:jsonb"`
	Experience     datatypes.JSON `gorm:"type:jsonb"`
	Education      datatypes.JSON `gorm:"type:jsonb"`
	Skills         datatypes.JSON `gorm:"type:jsonb"`
	Certifications datatypes.JSON `gorm:"type:jsonb"`
	Languages      datatypes.JSON `gorm:"type:jsonb"`
	SnapshotKey    string         `gorm:"size:512"`
}

// CoverLetter 表示一封求职信，同样归属于项目与用户。
type CoverLetter struct {
	gorm.Model
	ProjectID      uint    `gorm:"index"`
	Project        Project `gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint    `gorm:"index"`
	Title          string  `gorm:"size:255"`
	CompanyName    string  `gorm:"size:255"`
	PositionTitle  string  `gorm:"size:255"`
	Content        string  `gorm:"type:text"`
	JobDescription string  `gorm:"type:text"`
}

// Template 表示只读的简历模板。
// Config(JSONB) 的结构化形式是 cv.TemplateConfig：colors/fonts/layout。
type Template struct {
	gorm.Model
	Name            string         `gorm:"size:255"`
	Category        string         `gorm:"size:64;index"`
	Description     string         `gorm:"size:1024"`
	IsPremium       bool           `gorm:"default:false"`
	PreviewImageURL string         `gorm:"size:512"`
	Config          datatypes.JSON `gorm:"type:jsonb"`
}

// Asset 表示用户上传的个人资料图片等对象存储资产。
type Asset struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	ObjectKey string `gorm:"size:512;uniqueIndex"`
	MimeType  string `gorm:"size:128"`
	SizeBytes int64
}
