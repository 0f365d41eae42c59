package repository

import (
	"context"
	"errors"
	"fmt"

	"codecollab/internal/models"

	"gorm.io/gorm"
)

// ProjectRepositoryImpl handles all database operations for projects using GORM
type ProjectRepositoryImpl struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepositoryImpl {
	return &ProjectRepositoryImpl{db: db}
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, ownerID string, create *models.ProjectCreate) (*models.Project, error) {
	project := &models.Project{
		Name:        create.Name,
		Description: create.Description,
		Visibility:  create.Visibility,
		OwnerID:     ownerID,
	}
	if project.Visibility == "" {
		project.Visibility = models.VisibilityPrivate
	}

	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetByID loads a project together with its owner and collaborator list,
// which is everything the access check needs.
func (r *ProjectRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project

	err := r.db.WithContext(ctx).
		Preload("Collaborators").
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListForUser returns projects the user owns or collaborates on.
// KSUID ordering doubles as creation-time ordering.
func (r *ProjectRepositoryImpl) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	var projects []*models.Project

	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN project_collaborators pc ON pc.project_id = projects.id").
		Where("projects.owner_id = ? OR pc.user_id = ?", userID, userID).
		Group("projects.id").
		Order("projects.id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, id string, update *models.ProjectUpdate) (*models.Project, error) {
	var project models.Project

	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Visibility != nil {
		updates["visibility"] = *update.Visibility
	}

	if err := r.db.WithContext(ctx).Model(&project).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &project, nil
}

// Delete removes the project, every file in it and its collaborator join
// rows in one transaction. Versions and activity entries stay as historical
// record.
func (r *ProjectRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Project{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.File{}).Error; err != nil {
			return fmt.Errorf("failed to delete project files: %w", err)
		}
		if err := tx.Exec("DELETE FROM project_collaborators WHERE project_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to remove collaborators: %w", err)
		}

		return nil
	})
}

func (r *ProjectRepositoryImpl) AddCollaborator(ctx context.Context, projectID, userID string) error {
	project := models.Project{ID: projectID}
	user := models.User{ID: userID}

	if err := r.db.WithContext(ctx).Model(&project).Association("Collaborators").Append(&user); err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

func (r *ProjectRepositoryImpl) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	project := models.Project{ID: projectID}
	user := models.User{ID: userID}

	if err := r.db.WithContext(ctx).Model(&project).Association("Collaborators").Delete(&user); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	return nil
}

func (r *ProjectRepositoryImpl) ListCollaborators(ctx context.Context, projectID string) ([]*models.User, error) {
	var users []*models.User

	project := models.Project{ID: projectID}
	if err := r.db.WithContext(ctx).Model(&project).Association("Collaborators").Find(&users); err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}

	return users, nil
}
