package services

import (
	"context"
	"fmt"
	"testing"

	"codecollab/internal/models"
	"codecollab/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFileDir struct {
	files map[string]*models.File
}

func (f *fakeFileDir) GetByID(ctx context.Context, id string) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, repository.ErrNotFound)
	}
	return file, nil
}

type fakeProjectDir struct {
	projects map[string]*models.Project
}

func (f *fakeProjectDir) GetByID(ctx context.Context, id string) (*models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, repository.ErrNotFound)
	}
	return project, nil
}

func TestCanAccessFile(t *testing.T) {
	ctx := context.Background()

	files := &fakeFileDir{files: map[string]*models.File{
		"f1": {ID: "f1", ProjectID: "p1"},
		"f2": {ID: "f2", ProjectID: "ghost"},
	}}
	projects := &fakeProjectDir{projects: map[string]*models.Project{
		"p1": {
			ID:      "p1",
			OwnerID: "owner",
			Collaborators: []*models.User{
				{ID: "collab"},
			},
		},
	}}
	service := NewAccessService(files, projects)

	t.Run("owner is allowed", func(t *testing.T) {
		project, err := service.CanAccessFile(ctx, "owner", "f1")
		require.NoError(t, err)
		assert.Equal(t, "p1", project.ID)
	})

	t.Run("collaborator is allowed", func(t *testing.T) {
		project, err := service.CanAccessFile(ctx, "collab", "f1")
		require.NoError(t, err)
		assert.Equal(t, "p1", project.ID)
	})

	t.Run("stranger is denied, not-found is not leaked as denial", func(t *testing.T) {
		project, err := service.CanAccessFile(ctx, "stranger", "f1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Nil(t, project)
	})

	t.Run("missing file reports not found", func(t *testing.T) {
		_, err := service.CanAccessFile(ctx, "owner", "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NotErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("orphaned file reports not found", func(t *testing.T) {
		_, err := service.CanAccessFile(ctx, "owner", "f2")
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
