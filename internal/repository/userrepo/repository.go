package userrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/jsonfile"
	"estoque/internal/pkg/logger"
)

// UserRepository lê e grava o users.json.
// Ao contrário dos estoques, a ausência deste arquivo é fatal: sem ele não há login.
type UserRepository struct {
	Path   string
	logger logger.Logger
	mu     sync.Mutex
}

// NewUserRepository cria uma nova instância do UserRepository.
func NewUserRepository(path string, logger logger.Logger) *UserRepository {
	return &UserRepository{
		Path:   path,
		logger: logger,
	}
}

// FindAll carrega todos os usuários.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// FindByUsername busca um usuário pelo login.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByUsername no repositório.", map[string]interface{}{"username": username})

	users, err := r.FindAll(ctx)
	if err != nil {
		return domain.User{}, err
	}

	for _, u := range users {
		if u.Username == username {
			r.logger.Debug("Usuário encontrado no repositório.", map[string]interface{}{"username": username, "role": int(u.Role)})
			return u, nil
		}
	}

	r.logger.Info("Usuário não encontrado.", map[string]interface{}{"username": username})
	return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário '%s' não encontrado", username))
}

// SaveAll regrava o users.json por inteiro.
func (r *UserRepository) SaveAll(ctx context.Context, users []domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperror.NewInternalError("Operação cancelada antes da gravação.", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	if err := jsonfile.Write(r.Path, users); err != nil {
		r.logger.Error("Falha ao gravar arquivo de usuários.", err)
		return apperror.NewIOError("Falha ao gravar usuários", err)
	}
	r.logger.Info("Arquivo de usuários gravado.", map[string]interface{}{"usuarios": len(users)})
	return nil
}

func (r *UserRepository) load(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.NewInternalError("Operação cancelada antes da leitura.", err)
	}

	var users []domain.User
	found, err := jsonfile.Read(r.Path, &users)
	if !found && err == nil {
		r.logger.Error("Arquivo de usuários não encontrado.", errors.New(r.Path))
		return nil, apperror.NewInternalError("Arquivo de usuários não encontrado.", fmt.Errorf("%s ausente", r.Path))
	}
	if err != nil {
		r.logger.Error("Falha ao ler arquivo de usuários.", err)
		return nil, apperror.NewIOError("Falha ao ler usuários", err)
	}
	return users, nil
}
