package collaboration

import (
	"context"

	"codecollab/internal/models"
)

// Consumer-driven interfaces: the relay declares what it needs from the
// rest of the system, the api/repository packages provide it.

// AccessChecker decides whether a user may open a file for editing.
// Implementations return repository.ErrNotFound when the file or project
// is missing and services.ErrAccessDenied when the user lacks rights.
type AccessChecker interface {
	CanAccessFile(ctx context.Context, userID, fileID string) (*models.Project, error)
}

// FileStore is the persistence gateway for file content. The relay loads
// content on join and overwrites it wholesale on edit; any locking
// discipline belongs to the store, not the relay.
type FileStore interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
	UpdateContent(ctx context.Context, id, content string) error
}
