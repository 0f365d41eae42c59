package repository

import (
	"context"
	"errors"
	"fmt"

	"codecollab/internal/models"

	"gorm.io/gorm"
)

// FileRepositoryImpl handles all database operations for files using GORM.
// It is both the project-file directory and the persistence gateway the
// collaboration relay loads and saves content through.
type FileRepositoryImpl struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepositoryImpl {
	return &FileRepositoryImpl{db: db}
}

func (r *FileRepositoryImpl) Create(ctx context.Context, projectID string, create *models.FileCreate) (*models.File, error) {
	file := &models.File{
		Name:      create.Name,
		Type:      create.Type,
		Language:  create.Language,
		ParentID:  create.ParentID,
		ProjectID: projectID,
	}
	if file.Type == models.FileTypeFile {
		file.Content = create.Content
	}
	if file.Language == "" {
		file.Language = "plaintext"
	}

	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return file, nil
}

func (r *FileRepositoryImpl) GetByID(ctx context.Context, id string) (*models.File, error) {
	var file models.File

	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepositoryImpl) ListByProject(ctx context.Context, projectID string) ([]*models.File, error) {
	var files []*models.File

	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// UpdateContent overwrites the stored content wholesale. This is the
// last-write-wins persistence path used by the editing relay: no version
// check, no diffing, the latest write fully replaces prior content.
func (r *FileRepositoryImpl) UpdateContent(ctx context.Context, id, content string) error {
	result := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Update("content", content)

	if result.Error != nil {
		return fmt.Errorf("failed to save file content: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("file %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *FileRepositoryImpl) Update(ctx context.Context, id string, update *models.FileUpdate) (*models.File, error) {
	var file models.File

	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find file: %w", err)
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Content != nil {
		updates["content"] = *update.Content
	}
	if update.Language != nil {
		updates["language"] = *update.Language
	}
	if update.ParentID != nil {
		updates["parent_id"] = *update.ParentID
	}

	if err := r.db.WithContext(ctx).Model(&file).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update file: %w", err)
	}

	return &file, nil
}

// Delete removes a file, recursing into folders. Versions referencing the
// file are left in place as historical record.
func (r *FileRepositoryImpl) Delete(ctx context.Context, id string) error {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("file %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to find file: %w", err)
	}

	if file.Type == models.FileTypeFolder {
		var children []*models.File
		if err := r.db.WithContext(ctx).Where("parent_id = ?", id).Find(&children).Error; err != nil {
			return fmt.Errorf("failed to list folder children: %w", err)
		}
		for _, child := range children {
			if err := r.Delete(ctx, child.ID); err != nil {
				return err
			}
		}
	}

	if err := r.db.WithContext(ctx).Delete(&models.File{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
