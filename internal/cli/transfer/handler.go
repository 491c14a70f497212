package transfer

import (
	"context"
	"fmt"
	"io"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
	"estoque/internal/service/transferservice"
)

// TransferService define o contrato que o Handler espera do motor de transferência.
type TransferService interface {
	Send(ctx context.Context, id int, user string) (transferservice.Result, error)
	Receive(ctx context.Context, id int) (domain.Request, error)
}

// Handler agrupa os comandos 'movimentar ...'.
type Handler struct {
	Service TransferService
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc TransferService, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Out:     out,
	}
}

// SendHandler: movimentar enviar -id N
func (h *Handler) SendHandler(ctx context.Context, args []string) error {
	var id int
	fs := cliutil.NewFlagSet("movimentar enviar", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição comprada")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	actor, _ := middleware.GetActorFromContext(ctx)
	result, err := h.Service.Send(ctx, id, actor.Username)
	if err != nil {
		return err
	}

	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ITEM", "QUANTIDADE", "VALOR UNITÁRIO")
	for _, l := range result.Lines {
		cliutil.Row(tw, l.Item, l.Quantity, cliutil.Money(l.UnitValue))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "Requisição %d enviada ao setor.\n", id)
	return nil
}

// ReceiveHandler: movimentar receber -id N
func (h *Handler) ReceiveHandler(ctx context.Context, args []string) error {
	var id int
	fs := cliutil.NewFlagSet("movimentar receber", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição enviada")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	updated, err := h.Service.Receive(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "Recebimento da requisição %d confirmado (%s).\n", updated.ID, updated.Status)
	return nil
}
