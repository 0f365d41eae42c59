package api

import (
	"context"

	"codecollab/internal/models"
	"codecollab/internal/services"
)

// Handler-side interfaces, declared in the consuming package. Handlers only
// name the service methods they call, so tests can fake them directly.

// AccessService gates file access for the editor endpoints.
type AccessService interface {
	CanAccessFile(ctx context.Context, userID, fileID string) (*models.Project, error)
}

// CodeExecutor runs a snippet and returns the judge's verdict.
type CodeExecutor interface {
	Execute(ctx context.Context, code, language string) (*services.ExecuteResult, error)
}
