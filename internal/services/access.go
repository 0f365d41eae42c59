package services

import (
	"context"
	"errors"
	"fmt"

	"codecollab/internal/models"
)

// ErrAccessDenied is returned when a file exists but the user is neither
// the owner nor a collaborator of the owning project. Kept distinct from
// repository.ErrNotFound so the REST layer can answer 403 vs 404; the
// relay surfaces both as error events with the original wording.
var ErrAccessDenied = errors.New("not authorized")

// AccessService implements the access-control check shared by the REST
// editor endpoints and the collaboration relay: a user may view or edit a
// file when they own the file's project or appear in its collaborator list.
type AccessService struct {
	files    FileDirectory
	projects ProjectDirectory
}

func NewAccessService(files FileDirectory, projects ProjectDirectory) *AccessService {
	return &AccessService{files: files, projects: projects}
}

// CanAccessFile resolves the file's owning project and checks membership.
// Returns the project on success so callers don't have to reload it.
func (s *AccessService) CanAccessFile(ctx context.Context, userID, fileID string) (*models.Project, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, file.ProjectID)
	if err != nil {
		return nil, err
	}

	if !project.IsMember(userID) {
		return nil, fmt.Errorf("user %s on file %s: %w", userID, fileID, ErrAccessDenied)
	}

	return project, nil
}
