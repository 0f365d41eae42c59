package repository

import (
	"context"
	"fmt"

	"codecollab/internal/models"

	"gorm.io/gorm"
)

// ActivityRepositoryImpl handles all database operations for the activity feed
type ActivityRepositoryImpl struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepositoryImpl {
	return &ActivityRepositoryImpl{db: db}
}

// Log appends one entry to a project's activity feed.
func (r *ActivityRepositoryImpl) Log(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// ListByProject returns the newest activity entries for a project.
func (r *ActivityRepositoryImpl) ListByProject(ctx context.Context, projectID string, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity

	if limit <= 0 {
		limit = 20
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	return activities, nil
}
