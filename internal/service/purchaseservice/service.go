package purchaseservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
)

// StockRepository define o contrato que o motor de compras espera da persistência.
type StockRepository interface {
	View(ctx context.Context, fn func(s *domain.Snapshot) error) error
	Update(ctx context.Context, fn func(s *domain.Snapshot) error) error
}

// ShortfallLine compara o pedido de um item com o saldo do almoxarifado.
type ShortfallLine struct {
	Item      string
	Requested int
	Available int
	ToBuy     int
}

// PurchaseLine é o que o comprador efetivamente compra de um item.
type PurchaseLine struct {
	Item      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal é quantidade × preço unitário.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Result descreve a compra registrada. Total não é persistido.
type Result struct {
	Request domain.Request
	Bought  []PurchaseLine
	Total   decimal.Decimal
}

// Service é o motor de compras.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do motor de compras.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ComputeShortfall calcula, item a item, quanto falta comprar para atender a requisição.
func (s *Service) ComputeShortfall(ctx context.Context, id int) ([]ShortfallLine, error) {
	var lines []ShortfallLine
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		req, findErr := snap.Requests.Find(id)
		if findErr != nil {
			return findErr
		}
		lines = ComputeShortfall(req, snap.Warehouse)
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "Falha interna ao calcular faltas.")
	}

	s.logger.Debug("Faltas calculadas.", map[string]interface{}{"id": id, "itens": len(lines)})
	return lines, nil
}

// RegisterPurchase credita no almoxarifado as quantidades compradas (custo médio
// ponderado) e move a requisição Aprovada para Comprada.
func (s *Service) RegisterPurchase(ctx context.Context, id int, lines []PurchaseLine, user string) (Result, error) {
	s.logger.Debug("Iniciando registro de compra.", map[string]interface{}{"id": id, "linhas": len(lines), "usuario": user})

	if err := ValidateLines(lines); err != nil {
		s.logger.Warn("Falha na validação das linhas de compra.", map[string]interface{}{"id": id, "error": err.Error()})
		return Result{}, err
	}

	var result Result
	err := s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var regErr error
		result, regErr = RegisterPurchase(snap, id, lines, user)
		return regErr
	})
	if err != nil {
		s.logger.Warn("Compra recusada; almoxarifado e requisição inalterados.", map[string]interface{}{"id": id, "error": err.Error()})
		return Result{}, s.translate(err, "Falha interna ao registrar compra.")
	}

	s.logger.Info("Compra registrada com sucesso.", map[string]interface{}{
		"id":     id,
		"itens":  len(result.Bought),
		"total":  result.Total.StringFixed(2),
		"status": string(result.Request.Status),
	})
	return result, nil
}

// ComputeShortfall: disponível = min(pedido, saldo); comprar = pedido - disponível.
// Linhas repetidas do mesmo item são somadas antes da comparação.
func ComputeShortfall(req domain.Request, warehouse *domain.Ledger) []ShortfallLine {
	names, demand := req.Demand()
	out := make([]ShortfallLine, 0, len(names))
	for _, name := range names {
		requested := demand[name]
		available := warehouse.Quantity(name)
		if available > requested {
			available = requested
		}
		toBuy := requested - available
		if toBuy < 0 {
			toBuy = 0
		}
		out = append(out, ShortfallLine{Item: name, Requested: requested, Available: available, ToBuy: toBuy})
	}
	return out
}

// DefaultPurchase monta as linhas de compra a partir das faltas, com o mesmo preço para todas.
func DefaultPurchase(shortfall []ShortfallLine, unitPrice decimal.Decimal) []PurchaseLine {
	out := make([]PurchaseLine, 0, len(shortfall))
	for _, sl := range shortfall {
		out = append(out, PurchaseLine{Item: sl.Item, Quantity: sl.ToBuy, UnitPrice: unitPrice})
	}
	return out
}

// ValidateLines recusa nomes vazios, quantidades e preços negativos.
func ValidateLines(lines []PurchaseLine) error {
	for i, l := range lines {
		if strings.TrimSpace(l.Item) == "" {
			return apperror.NewValidationError(fmt.Sprintf("Nome vazio na linha %d da compra.", i+1))
		}
		if l.Quantity < 0 {
			return apperror.NewValidationError(fmt.Sprintf("Quantidade inválida na linha %d da compra.", i+1))
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidationError(fmt.Sprintf("Preço unitário inválido na linha %d da compra.", i+1))
		}
	}
	return nil
}

// RegisterPurchase aplica a compra sobre um Snapshot. Linhas com quantidade 0 são ignoradas.
func RegisterPurchase(snap *domain.Snapshot, id int, lines []PurchaseLine, user string) (Result, error) {
	if err := ValidateLines(lines); err != nil {
		return Result{}, err
	}
	req, err := snap.Requests.Find(id)
	if err != nil {
		return Result{}, err
	}
	if req.Status != domain.StatusApproved {
		return Result{}, apperror.NewConflictError(fmt.Sprintf("Só é possível comprar requisições aprovadas (requisição %d está %s).", id, req.Status))
	}

	bought := make([]PurchaseLine, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity == 0 {
			continue
		}
		name := strings.TrimSpace(l.Item)
		if _, err := snap.Warehouse.Credit(name, l.Quantity, l.UnitPrice); err != nil {
			return Result{}, err
		}

		m := domain.NewMovement(domain.MovementPurchase, name, l.Quantity, l.UnitPrice)
		m.RequestID = id
		m.To = domain.LocationWarehouse
		m.User = user
		snap.Record(m)

		l.Item = name
		bought = append(bought, l)
		total = total.Add(l.Subtotal())
	}

	updated, err := snap.Requests.SetStatus(id, domain.StatusPurchased)
	if err != nil {
		return Result{}, err
	}
	return Result{Request: updated, Bought: bought, Total: total}, nil
}

func (s *Service) translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}
