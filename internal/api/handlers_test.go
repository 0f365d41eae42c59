package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"codecollab/internal/auth"
	"codecollab/internal/models"
	"codecollab/internal/repository"
	"codecollab/internal/services"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubExecutor struct {
	result *services.ExecuteResult
	err    error
}

func (s *stubExecutor) Execute(ctx context.Context, code, language string) (*services.ExecuteResult, error) {
	return s.result, s.err
}

// testEnv wires a full handler onto an in-memory database so requests run
// through the real router, middleware and repositories.
type testEnv struct {
	router   *mux.Router
	verifier *auth.Verifier
	users    *repository.UserRepositoryImpl
	projects *repository.ProjectRepositoryImpl
	files    *repository.FileRepositoryImpl
	versions *repository.VersionRepositoryImpl
	executor *stubExecutor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.File{},
		&models.Version{},
		&models.Activity{},
	))

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	files := repository.NewFileRepository(db)
	versions := repository.NewVersionRepository(db)
	activity := repository.NewActivityRepository(db)

	verifier := auth.NewVerifier("test-secret")
	executor := &stubExecutor{}
	handler := NewHandler(
		users, projects, files, versions, activity,
		services.NewAccessService(files, projects),
		executor, nil, verifier, time.Hour,
	)

	return &testEnv{
		router:   SetupRoutes(handler),
		verifier: verifier,
		users:    users,
		projects: projects,
		files:    files,
		versions: versions,
		executor: executor,
	}
}

func (e *testEnv) newUser(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()

	user := &models.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, err := e.verifier.Issue(user.ID, time.Hour)
	require.NoError(t, err)

	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func (e *testEnv) createFile(t *testing.T, token, projectID, name, content string) *models.File {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/projects/"+projectID+"/files", token, map[string]string{
		"name":    name,
		"type":    "file",
		"content": content,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		File *models.File `json:"file"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotNil(t, created.File)

	return created.File
}

func TestFileWriteEndpointsRequireOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner, ownerTok := env.newUser(t, "Owner", "owner@example.com")
	collab, collabTok := env.newUser(t, "Collab", "collab@example.com")

	project, err := env.projects.Create(ctx, owner.ID, &models.ProjectCreate{Name: "shared"})
	require.NoError(t, err)
	require.NoError(t, env.projects.AddCollaborator(ctx, project.ID, collab.ID))

	file := env.createFile(t, ownerTok, project.ID, "main.go", "v1")
	base := "/api/projects/" + project.ID + "/files/" + file.ID

	t.Run("collaborator can read", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, base, collabTok, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, base+"/content", collabTok, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("collaborator cannot write", func(t *testing.T) {
		writes := []struct {
			method string
			path   string
			body   any
		}{
			{http.MethodPut, base + "/content", map[string]string{"content": "v2"}},
			{http.MethodPost, base + "/rename", map[string]string{"name": "other.go"}},
			{http.MethodPut, base, map[string]string{"name": "other.go"}},
			{http.MethodDelete, base, nil},
		}
		for _, w := range writes {
			rec := env.do(t, w.method, w.path, collabTok, w.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", w.method, w.path)
		}

		got, err := env.files.GetByID(ctx, file.ID)
		require.NoError(t, err)
		assert.Equal(t, "v1", got.Content)
		assert.Equal(t, "main.go", got.Name)
	})

	t.Run("owner can write", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, base+"/content", ownerTok, map[string]string{"content": "v2"})
		assert.Equal(t, http.StatusOK, rec.Code)

		got, err := env.files.GetByID(ctx, file.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Content)
	})
}

func TestDeleteProjectRemovesFiles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner, ownerTok := env.newUser(t, "Owner", "owner@example.com")
	project, err := env.projects.Create(ctx, owner.ID, &models.ProjectCreate{Name: "doomed"})
	require.NoError(t, err)
	file := env.createFile(t, ownerTok, project.ID, "main.go", "v1")

	rec := env.do(t, http.MethodDelete, "/api/projects/"+project.ID, ownerTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Project and all associated files deleted successfully", resp.Message)

	_, err = env.files.GetByID(ctx, file.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVersionsSnapshotPreviousContent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner, ownerTok := env.newUser(t, "Owner", "owner@example.com")
	project, err := env.projects.Create(ctx, owner.ID, &models.ProjectCreate{Name: "versioned"})
	require.NoError(t, err)
	file := env.createFile(t, ownerTok, project.ID, "main.go", "v1")

	contentURL := "/api/projects/" + project.ID + "/files/" + file.ID + "/content"
	for _, content := range []string{"v2", "v3"} {
		rec := env.do(t, http.MethodPut, contentURL, ownerTok, map[string]string{"content": content})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	versions, err := env.versions.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)

	byNumber := make(map[int]*models.Version, len(versions))
	for _, v := range versions {
		byNumber[v.VersionNumber] = v
	}

	// Each snapshot holds the content that was replaced, so restoring
	// version N rolls back to the state before update N.
	assert.Equal(t, "v1", byNumber[1].Content)
	assert.Equal(t, "Initial file creation", byNumber[1].Changes)
	assert.Equal(t, "v1", byNumber[2].Content)
	assert.Equal(t, "Auto-saved before update", byNumber[2].Changes)
	assert.Equal(t, "v2", byNumber[3].Content)
	assert.Equal(t, "Auto-saved before update", byNumber[3].Changes)

	got, err := env.files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", got.Content)
}

func TestRestoreVersionSnapshotsCurrentContent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner, ownerTok := env.newUser(t, "Owner", "owner@example.com")
	project, err := env.projects.Create(ctx, owner.ID, &models.ProjectCreate{Name: "restorable"})
	require.NoError(t, err)
	file := env.createFile(t, ownerTok, project.ID, "main.go", "v1")

	rec := env.do(t, http.MethodPut, "/api/projects/"+project.ID+"/files/"+file.ID+"/content",
		ownerTok, map[string]string{"content": "v2"})
	require.Equal(t, http.StatusOK, rec.Code)

	versions, err := env.versions.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	var initial *models.Version
	for _, v := range versions {
		if v.VersionNumber == 1 {
			initial = v
		}
	}
	require.NotNil(t, initial)

	rec = env.do(t, http.MethodPost, "/api/projects/"+project.ID+"/versions/restore/"+initial.ID, ownerTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		File    *models.File `json:"file"`
		Version int          `json:"version"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Version)
	require.NotNil(t, resp.File)
	assert.Equal(t, "v1", resp.File.Content)

	got, err := env.files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content)

	versions, err = env.versions.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for _, v := range versions {
		if v.VersionNumber == 3 {
			assert.Equal(t, "v2", v.Content)
			assert.Equal(t, "Auto-saved before restore", v.Changes)
		}
	}
}

func TestExecuteCodeVerdicts(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "Runner", "runner@example.com")

	t.Run("judge failure still returns a verdict", func(t *testing.T) {
		env.executor.err = errors.New("judge rejected submission: 503 Service Unavailable")

		rec := env.do(t, http.MethodPost, "/api/execute", token, map[string]string{
			"code":     `print("hi")`,
			"language": "python",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var result services.ExecuteResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.Equal(t, "Execution failed. Error: judge rejected submission: 503 Service Unavailable", result.Output)
		assert.Equal(t, "judge rejected submission: 503 Service Unavailable", result.Error)
		assert.Equal(t, "python", result.Language)
	})

	t.Run("unsupported language is a bad request", func(t *testing.T) {
		env.executor.err = errors.New(`language "brainfuck" is not supported`)

		rec := env.do(t, http.MethodPost, "/api/execute", token, map[string]string{
			"code":     "+++",
			"language": "brainfuck",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
