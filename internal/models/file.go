package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type FileType string

const (
	FileTypeFile   FileType = "file"
	FileTypeFolder FileType = "folder"
)

// File is a file or folder inside a project. Content is an opaque string:
// the editing relay overwrites it wholesale on every edit event (last write
// wins), there is no diffing at this layer.
type File struct {
	ID       string   `json:"id" gorm:"type:char(27);primaryKey"`
	Name     string   `json:"name" gorm:"type:text;not null"`
	Type     FileType `json:"type" gorm:"type:varchar(10);not null"`
	Content  string   `json:"content" gorm:"type:text;default:''"`
	Language string   `json:"language" gorm:"type:varchar(50);default:'plaintext'"`

	// ParentID is nil for root-level entries, otherwise points at a folder.
	ParentID *string `json:"parent_id,omitempty" gorm:"type:char(27);index"`

	ProjectID string   `json:"project_id" gorm:"type:char(27);not null;index"`
	Project   *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate hook generates KSUID before inserting
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = ksuid.New().String()
	}
	return nil
}

type FileCreate struct {
	Name     string   `json:"name"`
	Type     FileType `json:"type"`
	Content  string   `json:"content"`
	Language string   `json:"language"`
	ParentID *string  `json:"parent_id,omitempty"`
}

type FileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Content  *string `json:"content,omitempty"`
	Language *string `json:"language,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}
