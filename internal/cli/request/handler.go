package request

import (
	"context"
	"fmt"
	"io"
	"strings"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
)

// RequestService define o contrato que o Handler espera da camada de Serviço.
type RequestService interface {
	Create(ctx context.Context, requester string, rows []domain.LineInput) (domain.Request, error)
	UpdateItems(ctx context.Context, id int, rows []domain.LineInput) (domain.Request, error)
	GetByID(ctx context.Context, id int) (domain.Request, error)
	List(ctx context.Context, statuses ...domain.Status) ([]domain.Request, error)
	Approve(ctx context.Context, id int) (domain.Request, error)
	Reject(ctx context.Context, id int) (domain.Request, error)
}

// Handler agrupa os comandos 'requisicao ...'.
type Handler struct {
	Service RequestService
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc RequestService, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Out:     out,
	}
}

// CreateHandler: requisicao criar -item Nome=qtd [-item ...]
func (h *Handler) CreateHandler(ctx context.Context, args []string) error {
	var lines cliutil.LineFlags
	fs := cliutil.NewFlagSet("requisicao criar", h.Out)
	fs.Var(&lines, "item", "linha da requisição no formato Nome=quantidade (repetível)")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}

	actor, _ := middleware.GetActorFromContext(ctx)
	created, err := h.Service.Create(ctx, actor.Username, lines)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.Out, "Requisição %d salva com sucesso!\n", created.ID)
	cliutil.PrintRequest(h.Out, created)
	return nil
}

// UpdateHandler: requisicao editar -id N -item Nome=qtd [-item ...]
func (h *Handler) UpdateHandler(ctx context.Context, args []string) error {
	var lines cliutil.LineFlags
	var id int
	fs := cliutil.NewFlagSet("requisicao editar", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição")
	fs.Var(&lines, "item", "nova linha no formato Nome=quantidade (repetível)")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	updated, err := h.Service.UpdateItems(ctx, id, lines)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.Out, "Requisição %d atualizada.\n", updated.ID)
	cliutil.PrintRequest(h.Out, updated)
	return nil
}

// GetHandler: requisicao ver -id N
func (h *Handler) GetHandler(ctx context.Context, args []string) error {
	var id int
	fs := cliutil.NewFlagSet("requisicao ver", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	req, err := h.Service.GetByID(ctx, id)
	if err != nil {
		return err
	}
	cliutil.PrintRequest(h.Out, req)
	return nil
}

// ListHandler: requisicao listar [-status Pendente,Aprovada]
func (h *Handler) ListHandler(ctx context.Context, args []string) error {
	var statusText string
	fs := cliutil.NewFlagSet("requisicao listar", h.Out)
	fs.StringVar(&statusText, "status", "", "status separados por vírgula (vazio = todos)")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}

	statuses, err := ParseStatuses(statusText)
	if err != nil {
		return err
	}

	list, err := h.Service.List(ctx, statuses...)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(h.Out, "Nenhuma requisição encontrada.")
		return nil
	}

	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ID", "STATUS", "ITENS", "QTD TOTAL", "SOLICITANTE")
	for _, r := range list {
		cliutil.Row(tw, r.ID, r.Status, len(r.Items), r.TotalQuantity(), r.Requester)
	}
	return tw.Flush()
}

// ApproveHandler: requisicao aprovar -id N
func (h *Handler) ApproveHandler(ctx context.Context, args []string) error {
	return h.decide(ctx, "requisicao aprovar", args, h.Service.Approve)
}

// RejectHandler: requisicao reprovar -id N
func (h *Handler) RejectHandler(ctx context.Context, args []string) error {
	return h.decide(ctx, "requisicao reprovar", args, h.Service.Reject)
}

func (h *Handler) decide(ctx context.Context, name string, args []string, apply func(context.Context, int) (domain.Request, error)) error {
	var id int
	fs := cliutil.NewFlagSet(name, h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	updated, err := apply(ctx, id)
	if err != nil {
		return err
	}

	actor, _ := middleware.GetActorFromContext(ctx)
	h.Logger.Info("Decisão registrada.", map[string]interface{}{"id": id, "status": string(updated.Status), "usuario": actor.Username})
	fmt.Fprintf(h.Out, "Requisição %d %s.\n", updated.ID, strings.ToLower(string(updated.Status)))
	return nil
}

// ParseStatuses converte "Pendente,Aprovada" em status. Vazio ou "Todas" = sem filtro.
func ParseStatuses(text string) ([]domain.Status, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "todas") {
		return nil, nil
	}
	var out []domain.Status
	for _, part := range strings.Split(text, ",") {
		st, err := domain.ParseStatus(part)
		if err != nil {
			return nil, apperror.NewValidationError(fmt.Sprintf("Status '%s' desconhecido.", strings.TrimSpace(part)))
		}
		out = append(out, st)
	}
	return out, nil
}
