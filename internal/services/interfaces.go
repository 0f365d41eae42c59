package services

import (
	"context"

	"codecollab/internal/models"
)

// Interfaces are declared here, in the consuming package, rather than next
// to the repository implementations. Services only name the methods they
// actually call, which keeps fakes small in tests.

// FileDirectory is what the access check needs from file storage.
type FileDirectory interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
}

// ProjectDirectory is what the access check needs from project storage.
type ProjectDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
}
