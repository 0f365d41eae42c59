package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

// Version is a point-in-time snapshot of a file's content. Version numbers
// are monotonic per file, starting at 1 on file creation.
type Version struct {
	ID            string `json:"id" gorm:"type:char(27);primaryKey"`
	ProjectID     string `json:"project_id" gorm:"type:char(27);not null;index"`
	FileID        string `json:"file_id" gorm:"type:char(27);not null;index:idx_file_version"`
	VersionNumber int    `json:"version_number" gorm:"not null;index:idx_file_version"`
	Content       string `json:"content" gorm:"type:text"`
	Changes       string `json:"changes" gorm:"type:text;default:''"`
	CreatedBy     string `json:"created_by" gorm:"type:char(27);not null"`

	File   *File `json:"file,omitempty" gorm:"foreignKey:FileID;references:ID"`
	Author *User `json:"author,omitempty" gorm:"foreignKey:CreatedBy;references:ID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate hook generates KSUID before inserting
func (v *Version) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = ksuid.New().String()
	}
	return nil
}
