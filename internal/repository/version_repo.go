package repository

import (
	"context"
	"errors"
	"fmt"

	"codecollab/internal/models"

	"gorm.io/gorm"
)

// VersionRepositoryImpl handles all database operations for file versions
type VersionRepositoryImpl struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepositoryImpl {
	return &VersionRepositoryImpl{db: db}
}

// Create inserts a snapshot with the next monotonic version number for
// the file.
func (r *VersionRepositoryImpl) Create(ctx context.Context, version *models.Version) error {
	if version.VersionNumber == 0 {
		next, err := r.nextVersionNumber(ctx, version.FileID)
		if err != nil {
			return err
		}
		version.VersionNumber = next
	}

	if err := r.db.WithContext(ctx).Create(version).Error; err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	return nil
}

func (r *VersionRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Version, error) {
	var version models.Version

	err := r.db.WithContext(ctx).First(&version, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	return &version, nil
}

// ListByProject returns all versions in a project, newest first, with the
// file and author preloaded for display.
func (r *VersionRepositoryImpl) ListByProject(ctx context.Context, projectID string) ([]*models.Version, error) {
	var versions []*models.Version

	err := r.db.WithContext(ctx).
		Preload("File").
		Preload("Author").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

func (r *VersionRepositoryImpl) nextVersionNumber(ctx context.Context, fileID string) (int, error) {
	var max int

	err := r.db.WithContext(ctx).
		Model(&models.Version{}).
		Where("file_id = ?", fileID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute next version number: %w", err)
	}

	return max + 1, nil
}
