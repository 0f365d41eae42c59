package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActionProjectCreated      ActivityAction = "project_created"
	ActionProjectUpdated      ActivityAction = "project_updated"
	ActionFileCreated         ActivityAction = "file_created"
	ActionFileUpdated         ActivityAction = "file_updated"
	ActionFileDeleted         ActivityAction = "file_deleted"
	ActionFolderCreated       ActivityAction = "folder_created"
	ActionFolderDeleted       ActivityAction = "folder_deleted"
	ActionCollaboratorAdded   ActivityAction = "collaborator_added"
	ActionCollaboratorRemoved ActivityAction = "collaborator_removed"
	ActionVersionRestored     ActivityAction = "version_restored"
)

// Activity is one entry in a project's audit feed. Details carries
// action-specific context (file names, collaborator ids, ...) as JSON.
type Activity struct {
	ID        string         `json:"id" gorm:"type:char(27);primaryKey"`
	ProjectID string         `json:"project_id" gorm:"type:char(27);not null;index"`
	UserID    string         `json:"user_id" gorm:"type:char(27);not null"`
	Action    ActivityAction `json:"action" gorm:"type:varchar(50);not null"`
	Details   map[string]any `json:"details" gorm:"type:jsonb;serializer:json;default:'{}'"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate hook generates KSUID before inserting
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = ksuid.New().String()
	}
	return nil
}
