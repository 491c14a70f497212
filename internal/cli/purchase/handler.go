package purchase

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"estoque/internal/cli/cliutil"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/pkg/middleware"
	"estoque/internal/service/purchaseservice"
)

// PurchaseService define o contrato que o Handler espera da camada de Serviço.
type PurchaseService interface {
	ComputeShortfall(ctx context.Context, id int) ([]purchaseservice.ShortfallLine, error)
	RegisterPurchase(ctx context.Context, id int, lines []purchaseservice.PurchaseLine, user string) (purchaseservice.Result, error)
}

// Handler agrupa os comandos 'compra ...'.
type Handler struct {
	Service PurchaseService
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PurchaseService, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Out:     out,
	}
}

// ShortfallHandler: compra faltas -id N
func (h *Handler) ShortfallHandler(ctx context.Context, args []string) error {
	var id int
	fs := cliutil.NewFlagSet("compra faltas", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	lines, err := h.Service.ComputeShortfall(ctx, id)
	if err != nil {
		return err
	}

	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ITEM", "SOLICITADO", "DISPONÍVEL", "A COMPRAR")
	for _, l := range lines {
		cliutil.Row(tw, l.Item, l.Requested, l.Available, l.ToBuy)
	}
	return tw.Flush()
}

// RegisterHandler: compra registrar -id N [-item Nome=qtd@preco ...] [-preco P]
// Sem -item, compra exatamente as faltas calculadas, todas ao preço -preco.
func (h *Handler) RegisterHandler(ctx context.Context, args []string) error {
	var id int
	var priceText string
	var lines purchaseFlags
	fs := cliutil.NewFlagSet("compra registrar", h.Out)
	fs.IntVar(&id, "id", 0, "id da requisição")
	fs.Var(&lines, "item", "linha comprada no formato Nome=quantidade@preço (repetível)")
	fs.StringVar(&priceText, "preco", "0", "preço unitário usado quando nenhuma linha -item é informada")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	if err := cliutil.RequireID(id); err != nil {
		return err
	}

	if len(lines) == 0 {
		price, err := parsePrice(priceText)
		if err != nil {
			return apperror.NewValidationError(fmt.Sprintf("Preço '%s' inválido.", priceText))
		}
		shortfall, err := h.Service.ComputeShortfall(ctx, id)
		if err != nil {
			return err
		}
		lines = purchaseservice.DefaultPurchase(shortfall, price)
	}

	actor, _ := middleware.GetActorFromContext(ctx)
	result, err := h.Service.RegisterPurchase(ctx, id, lines, actor.Username)
	if err != nil {
		return err
	}

	if len(result.Bought) > 0 {
		tw := cliutil.NewTable(h.Out)
		cliutil.Row(tw, "ITEM", "QUANTIDADE", "PREÇO UNIT.", "SUBTOTAL")
		for _, l := range result.Bought {
			cliutil.Row(tw, l.Item, l.Quantity, cliutil.Money(l.UnitPrice), cliutil.Money(l.Subtotal()))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(h.Out, "Compra da requisição %d registrada. Total: %s\n", id, cliutil.Money(result.Total))
	return nil
}

// purchaseFlags acumula ocorrências de -item Nome=qtd@preco.
type purchaseFlags []purchaseservice.PurchaseLine

func (f *purchaseFlags) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(*f))
	for _, l := range *f {
		parts = append(parts, fmt.Sprintf("%s=%d@%s", l.Item, l.Quantity, l.UnitPrice.String()))
	}
	return strings.Join(parts, ",")
}

func (f *purchaseFlags) Set(value string) error {
	line, err := ParsePurchaseLine(value)
	if err != nil {
		return err
	}
	*f = append(*f, line)
	return nil
}

// ParsePurchaseLine lê "Nome=qtd@preco". Sem "@preco" o preço é zero.
func ParsePurchaseLine(value string) (purchaseservice.PurchaseLine, error) {
	name, rest, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return purchaseservice.PurchaseLine{}, fmt.Errorf("use Nome=quantidade@preço")
	}
	qtyText, priceText, hasPrice := strings.Cut(rest, "@")
	qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
	if err != nil {
		return purchaseservice.PurchaseLine{}, fmt.Errorf("quantidade '%s' inválida", qtyText)
	}
	price := decimal.Zero
	if hasPrice {
		price, err = parsePrice(priceText)
		if err != nil {
			return purchaseservice.PurchaseLine{}, fmt.Errorf("preço '%s' inválido", priceText)
		}
	}
	return purchaseservice.PurchaseLine{Item: strings.TrimSpace(name), Quantity: qty, UnitPrice: price}, nil
}

// parsePrice aceita vírgula ou ponto como separador decimal ("2,50" ou "2.50").
func parsePrice(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(text), ",", ".", 1))
}
