package errors

import (
	"errors"
	"fmt"
)

// Códigos de saída usados pela CLI. Cada categoria de erro tem o seu,
// para que scripts possam distinguir falhas de validação de falhas de estoque.
const (
	ExitOK                = 0
	ExitInternal          = 1
	ExitValidation        = 2
	ExitNotFound          = 3
	ExitInsufficientStock = 4
	ExitConflict          = 5
	ExitPermissionDenied  = 6
	ExitUnauthorized      = 7
)

// AppError é a interface central para todos os erros customizados do estoque.
// Ela permite que o código externo (CLI) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	ExitCode() int    // Código de saída sugerido para a CLI
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) ExitCode() int    { return ExitValidation }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado (requisição ou item).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) ExitCode() int    { return ExitNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// InsufficientStockError indica que um débito excede a quantidade disponível.
type InsufficientStockError struct {
	Item      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente de %s: solicitado %d, disponível %d", e.Item, e.Requested, e.Available)
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) ExitCode() int    { return ExitInsufficientStock }
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente.
func NewInsufficientStockError(item string, requested, available int) AppError {
	return &InsufficientStockError{Item: item, Requested: requested, Available: available}
}

// ConflictError representa um conflito na regra de negócio (e.g., transição de status inválida).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) ExitCode() int    { return ExitConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// PermissionDeniedError indica que o papel do usuário não autoriza a ação.
type PermissionDeniedError struct {
	Msg string
}

func (e *PermissionDeniedError) Error() string    { return fmt.Sprintf("Permissão negada: %s", e.Msg) }
func (e *PermissionDeniedError) Category() string { return "PERMISSION_DENIED" }
func (e *PermissionDeniedError) ExitCode() int    { return ExitPermissionDenied }
func (e *PermissionDeniedError) Unwrap() error    { return nil }

// NewPermissionDeniedError cria um erro de permissão negada.
func NewPermissionDeniedError(msg string) AppError {
	return &PermissionDeniedError{Msg: msg}
}

// UnauthorizedError representa credenciais inválidas ou sessão ausente/expirada.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) ExitCode() int    { return ExitUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas na CLI, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro de disco)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) ExitCode() int    { return ExitInternal }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro interno (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewIOError é um atalho para criar um InternalError específico de falhas de arquivo.
func NewIOError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (IO): %s", msg, err.Error()), err)
}

// --- Helper para a CLI (Tradução Final) ---

// MapToExitCode recebe um erro e o traduz para código de saída, categoria e mensagem.
func MapToExitCode(err error) (int, string, string) {
	if err == nil {
		return ExitOK, "", ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return ExitInternal, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
