package user

import (
	"context"
	"fmt"
	"io"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
)

// UserService define o contrato para o login.
type UserService interface {
	Login(ctx context.Context, username string, password string) (string, domain.User, error)
}

// Handler agrupa os comandos de sessão.
type Handler struct {
	Service UserService
	Session *SessionStore
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, session *SessionStore, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Session: session,
		Logger:  log,
		Out:     out,
	}
}

// LoginHandler: login -usuario U -senha S
func (h *Handler) LoginHandler(ctx context.Context, args []string) error {
	var username, password string
	fs := cliutil.NewFlagSet("login", h.Out)
	fs.StringVar(&username, "usuario", "", "login do usuário")
	fs.StringVar(&password, "senha", "", "senha")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}

	// 1. Chamar o Serviço de Login
	token, user, err := h.Service.Login(ctx, username, password)
	if err != nil {
		return err
	}

	// 2. Guardar o token para os próximos comandos
	if err := h.Session.Save(token, user.Username); err != nil {
		h.Logger.Error("Falha ao gravar arquivo de sessão.", err)
		return apperror.NewIOError("Falha ao gravar sessão", err)
	}

	name := user.Name
	if name == "" {
		name = user.Username
	}
	fmt.Fprintf(h.Out, "Bem-vindo, %s (%s).\n", name, user.Role)
	return nil
}

// LogoutHandler: logout
func (h *Handler) LogoutHandler(ctx context.Context, args []string) error {
	fs := cliutil.NewFlagSet("logout", h.Out)
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := h.Session.Clear(); err != nil {
		h.Logger.Error("Falha ao remover arquivo de sessão.", err)
		return apperror.NewIOError("Falha ao encerrar sessão", err)
	}
	fmt.Fprintln(h.Out, "Sessão encerrada.")
	return nil
}

// WhoAmIHandler: quemsou (exige sessão válida)
func (h *Handler) WhoAmIHandler(ctx context.Context, args []string) error {
	actor, ok := middleware.GetActorFromContext(ctx)
	if !ok {
		return apperror.NewUnauthorizedError("Nenhuma sessão ativa.")
	}
	fmt.Fprintf(h.Out, "%s (%s) - %s\n", actor.Username, actor.Name, actor.Role)
	return nil
}
