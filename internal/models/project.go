package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type ProjectVisibility string

const (
	VisibilityPublic  ProjectVisibility = "public"
	VisibilityPrivate ProjectVisibility = "private"
)

// Project groups files and carries the authorization state for everything
// under it: the owner plus an explicit collaborator list. The live editing
// relay and the REST layer both gate on owner-or-collaborator.
type Project struct {
	ID          string            `json:"id" gorm:"type:char(27);primaryKey"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description string            `json:"description" gorm:"type:text;default:''"`
	Visibility  ProjectVisibility `json:"visibility" gorm:"type:varchar(20);not null;default:'private'"`
	OwnerID     string            `json:"owner_id" gorm:"type:char(27);not null;index"`
	Owner       *User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`

	// Collaborators are users granted edit access by the owner.
	Collaborators []*User `json:"collaborators,omitempty" gorm:"many2many:project_collaborators"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate hook generates KSUID before inserting
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = ksuid.New().String()
	}
	return nil
}

// IsMember reports whether userID is the owner or a collaborator.
func (p *Project) IsMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

type ProjectCreate struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Visibility  ProjectVisibility `json:"visibility"`
}

type ProjectUpdate struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Visibility  *ProjectVisibility `json:"visibility,omitempty"`
}
