package userrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/repository/userrepo"
)

const usersJSON = `[
    {"username": "admin", "password": "admin", "role": 0, "name": "Administrador"},
    {"username": "func", "password": "1234", "role": 1}
]`

func TestFindByUsername(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(usersJSON), 0o644))
	repo := userrepo.NewUserRepository(path, logger.NewNopLogger())

	u, err := repo.FindByUsername(context.Background(), "func")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, u.Role)
	assert.Equal(t, "1234", u.Password)

	_, err = repo.FindByUsername(context.Background(), "ninguem")
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestFindAll_MissingFileIsInternalError(t *testing.T) {
	repo := userrepo.NewUserRepository(filepath.Join(t.TempDir(), "users.json"), logger.NewNopLogger())

	_, err := repo.FindAll(context.Background())

	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestSaveAll_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := userrepo.NewUserRepository(path, logger.NewNopLogger())
	users := []domain.User{{Username: "gil", Password: "x", Role: domain.RoleManager, Name: "Gil Ávila"}}

	require.NoError(t, repo.SaveAll(context.Background(), users))

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, users, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Gil Ávila", "acentos gravados sem escape")
}

func TestSaveAll_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := userrepo.NewUserRepository(path, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.SaveAll(ctx, nil)

	assert.IsType(t, &apperror.InternalError{}, err)
	assert.NoFileExists(t, path)
}
