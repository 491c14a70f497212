package stock

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
	"estoque/internal/service/stockservice"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	ListStock(ctx context.Context, location domain.Location) ([]domain.Item, decimal.Decimal, error)
	WriteOff(ctx context.Context, req stockservice.WriteOffRequest) (domain.Item, error)
	Movements(ctx context.Context, requestID int) ([]domain.Movement, error)
}

// Handler agrupa os comandos de consulta de estoque, baixa e diário.
type Handler struct {
	Service StockService
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Out:     out,
	}
}

// ListHandler: estoque [-local almoxarifado|setor]
func (h *Handler) ListHandler(ctx context.Context, args []string) error {
	var localText string
	fs := cliutil.NewFlagSet("estoque", h.Out)
	fs.StringVar(&localText, "local", string(domain.LocationWarehouse), "almoxarifado ou setor")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	location, err := domain.ParseLocation(localText, domain.LocationWarehouse)
	if err != nil {
		return err
	}

	items, total, err := h.Service.ListStock(ctx, location)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(h.Out, "Estoque do %s vazio.\n", location)
		return nil
	}

	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ITEM", "QUANTIDADE", "VALOR UNITÁRIO", "VALOR TOTAL")
	for _, it := range items {
		cliutil.Row(tw, it.Name, it.Quantity, cliutil.Money(it.UnitValue), cliutil.Money(it.TotalValue()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "Valor total do %s: %s\n", location, cliutil.Money(total))
	return nil
}

// WriteOffHandler: baixa -item Nome -quantidade N [-local setor] [-motivo texto]
func (h *Handler) WriteOffHandler(ctx context.Context, args []string) error {
	var localText, item, reason string
	var qty int
	fs := cliutil.NewFlagSet("baixa", h.Out)
	fs.StringVar(&localText, "local", string(domain.LocationSector), "almoxarifado ou setor")
	fs.StringVar(&item, "item", "", "nome do item")
	fs.IntVar(&qty, "quantidade", 0, "quantidade a baixar")
	fs.StringVar(&reason, "motivo", "", "motivo da baixa")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	location, err := domain.ParseLocation(localText, domain.LocationSector)
	if err != nil {
		return err
	}

	actor, _ := middleware.GetActorFromContext(ctx)
	remaining, err := h.Service.WriteOff(ctx, stockservice.WriteOffRequest{
		Location: location,
		Item:     item,
		Quantity: qty,
		Reason:   reason,
		User:     actor.Username,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(h.Out, "Baixa de %d %s registrada no %s. Saldo: %d.\n", qty, remaining.Name, location, remaining.Quantity)
	return nil
}

// MovementsHandler: movimentos [-requisicao N]
func (h *Handler) MovementsHandler(ctx context.Context, args []string) error {
	var requestID int
	fs := cliutil.NewFlagSet("movimentos", h.Out)
	fs.IntVar(&requestID, "requisicao", 0, "filtra pelo id da requisição (0 = todas)")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}

	list, err := h.Service.Movements(ctx, requestID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(h.Out, "Nenhuma movimentação registrada.")
		return nil
	}

	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "DATA", "TIPO", "REQ", "ITEM", "QTD", "VALOR UNIT.", "ORIGEM", "DESTINO", "USUÁRIO", "MOTIVO")
	for _, m := range list {
		req := "-"
		if m.RequestID > 0 {
			req = fmt.Sprint(m.RequestID)
		}
		cliutil.Row(tw,
			m.Date.Local().Format("02/01/2006 15:04"),
			m.Type, req, m.Item, m.Quantity, cliutil.Money(m.UnitValue),
			dash(string(m.From)), dash(string(m.To)), dash(m.User), dash(m.Reason),
		)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
