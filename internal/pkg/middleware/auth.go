package middleware

import (
	"context"
	"fmt"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/token"
)

// ContextKey é o tipo das chaves que esta camada anexa ao contexto.
type ContextKey int

const (
	ActorKey ContextKey = iota
)

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// TokenSource devolve o token da sessão atual (lido do arquivo de sessão).
type TokenSource func() (string, error)

// Command é a assinatura de um comando da CLI.
type Command func(ctx context.Context, args []string) error

// NewAuthMiddleware valida o token da sessão e anexa o Actor ao contexto.
func NewAuthMiddleware(tokenSvc TokenService, source TokenSource) func(next Command) Command {
	return func(next Command) Command {
		return func(ctx context.Context, args []string) error {
			// 1. Ler o token salvo pelo login
			tokenString, err := source()
			if err != nil || tokenString == "" {
				return apperror.NewUnauthorizedError("Nenhuma sessão ativa. Execute 'estoque login'.")
			}

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				return apperror.NewUnauthorizedError("Sessão inválida ou expirada. Execute 'estoque login' novamente.")
			}

			// 3. Anexar o Actor ao contexto
			actor := domain.Actor{
				Username: claims.Username,
				Name:     claims.Name,
				Role:     domain.Role(claims.Role),
			}
			return next(context.WithValue(ctx, ActorKey, actor), args)
		}
	}
}

// GetActorFromContext extrai o usuário autenticado.
func GetActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(domain.Actor)
	return actor, ok
}

// PermissionMiddleware recusa o comando se o papel do usuário não puder executar a ação.
func PermissionMiddleware(action domain.Action) func(next Command) Command {
	return func(next Command) Command {
		return func(ctx context.Context, args []string) error {
			actor, ok := GetActorFromContext(ctx)
			if !ok {
				return apperror.NewUnauthorizedError("Autorização necessária. Sessão não processada.")
			}

			if !domain.Can(actor.Role, action) {
				return apperror.NewPermissionDeniedError(fmt.Sprintf("o papel %s não pode executar '%s'.", actor.Role, action))
			}

			return next(ctx, args)
		}
	}
}
