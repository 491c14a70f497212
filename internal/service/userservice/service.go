package userservice

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/token"
)

// UserRepository é o contrato da camada de persistência de usuários.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	SaveAll(ctx context.Context, users []domain.User) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(username string, name string, role int) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		logger:   logger,
	}
}

// Login autentica um usuário, verifica a senha e gera o token da sessão.
func (s *UserService) Login(ctx context.Context, username string, password string) (string, domain.User, error) {
	// 1. Validação Básica
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", domain.User{}, apperror.NewUnauthorizedError("Usuário e senha são obrigatórios.")
	}

	// 2. Buscar Usuário pelo login
	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		// Usuário inexistente vira Unauthorized para não dar dicas.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			s.logger.Info("Tentativa de login com usuário inexistente.", map[string]interface{}{"username": username})
			return "", domain.User{}, apperror.NewUnauthorizedError("Usuário ou senha inválidos.")
		}
		return "", domain.User{}, err
	}

	// 3. Comparar Senhas
	if !PasswordMatches(user.Password, password) {
		s.logger.Info("Tentativa de login com senha incorreta.", map[string]interface{}{"username": username})
		return "", domain.User{}, apperror.NewUnauthorizedError("Usuário ou senha inválidos.")
	}
	if !user.Role.Valid() {
		s.logger.Warn("Usuário com papel desconhecido.", map[string]interface{}{"username": username, "role": int(user.Role)})
		return "", domain.User{}, apperror.NewUnauthorizedError("Papel de usuário desconhecido.")
	}

	// 4. Gerar token
	tokenString, err := s.TokenSvc.GenerateToken(user.Username, user.Name, int(user.Role))
	if err != nil {
		s.logger.Error("Falha ao gerar token de sessão.", err)
		return "", domain.User{}, apperror.NewInternalError("Falha ao gerar token de sessão.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"username": user.Username, "role": user.Role.String()})
	user.Password = ""
	return tokenString, user, nil
}

// HashPasswords troca senhas em texto puro por hashes bcrypt e retorna quantas foram convertidas.
func (s *UserService) HashPasswords(ctx context.Context) (int, error) {
	users, err := s.UserRepo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	converted := 0
	for i, u := range users {
		if IsHashed(u.Password) {
			continue
		}
		// mesma normalização do Login: espaços nas pontas nunca fizeram parte da senha
		hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(u.Password)), bcrypt.DefaultCost)
		if err != nil {
			return 0, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
		}
		users[i].Password = string(hashed)
		converted++
	}

	if converted == 0 {
		s.logger.Info("Nenhuma senha em texto puro encontrada.", nil)
		return 0, nil
	}
	if err := s.UserRepo.SaveAll(ctx, users); err != nil {
		return 0, err
	}
	s.logger.Info("Senhas convertidas para bcrypt.", map[string]interface{}{"convertidas": converted})
	return converted, nil
}

// IsHashed reconhece hashes bcrypt ($2a$, $2b$, $2y$).
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// PasswordMatches compara a senha digitada com o valor gravado (hash bcrypt ou texto puro legado).
func PasswordMatches(stored, password string) bool {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(stored)), []byte(password)) == 1
}
