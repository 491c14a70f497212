package stockservice

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

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	View(ctx context.Context, fn func(s *domain.Snapshot) error) error
	Update(ctx context.Context, fn func(s *domain.Snapshot) error) error
	Movements(ctx context.Context) ([]domain.Movement, error)
}

// WriteOffRequest é o pedido de baixa de estoque.
type WriteOffRequest struct {
	Location domain.Location
	Item     string
	Quantity int
	Reason   string
	User     string
}

// Service implementa consulta de estoques e baixa.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListStock retorna os itens do local, na ordem do arquivo, e o valor total do estoque.
func (s *Service) ListStock(ctx context.Context, location domain.Location) ([]domain.Item, decimal.Decimal, error) {
	var items []domain.Item
	total := decimal.Zero
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		ledger, err := snap.Ledger(location)
		if err != nil {
			return err
		}
		items = ledger.Items()
		total = ledger.TotalValue()
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, s.translate(err, "Falha interna ao listar estoque.")
	}

	s.logger.Debug("Estoque listado.", map[string]interface{}{"local": string(location), "itens": len(items)})
	return items, total, nil
}

// WriteOff dá baixa de uma quantidade de um item (padrão: setor) e registra no diário.
func (s *Service) WriteOff(ctx context.Context, req WriteOffRequest) (domain.Item, error) {
	s.logger.Debug("Iniciando baixa de estoque no serviço.", map[string]interface{}{
		"local":      string(req.Location),
		"item":       req.Item,
		"quantidade": req.Quantity,
	})

	if req.Location == "" {
		req.Location = domain.LocationSector
	}
	req.Item = strings.TrimSpace(req.Item)
	if req.Item == "" {
		return domain.Item{}, apperror.NewValidationError("O item da baixa é obrigatório.")
	}
	if req.Quantity <= 0 {
		return domain.Item{}, apperror.NewValidationError("A quantidade da baixa deve ser positiva.")
	}

	var remaining domain.Item
	err := s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		ledger, err := snap.Ledger(req.Location)
		if err != nil {
			return err
		}
		current, ok := ledger.Get(req.Item)
		if !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Item '%s' não existe no %s.", req.Item, req.Location))
		}
		remaining, err = ledger.Debit(req.Item, req.Quantity)
		if err != nil {
			return err
		}

		m := domain.NewMovement(domain.MovementWriteOff, req.Item, req.Quantity, current.UnitValue)
		m.From = req.Location
		m.User = req.User
		m.Reason = strings.TrimSpace(req.Reason)
		snap.Record(m)
		return nil
	})
	if err != nil {
		s.logger.Warn("Baixa recusada.", map[string]interface{}{"item": req.Item, "error": err.Error()})
		return domain.Item{}, s.translate(err, "Falha interna ao dar baixa no estoque.")
	}

	s.logger.Info("Baixa de estoque registrada.", map[string]interface{}{
		"local":      string(req.Location),
		"item":       req.Item,
		"quantidade": req.Quantity,
		"novo_saldo": remaining.Quantity,
	})
	return remaining, nil
}

// Movements retorna o diário de movimentações, opcionalmente filtrado por requisição (0 = todas).
func (s *Service) Movements(ctx context.Context, requestID int) ([]domain.Movement, error) {
	all, err := s.repo.Movements(ctx)
	if err != nil {
		return nil, s.translate(err, "Falha interna ao ler movimentações.")
	}
	if requestID == 0 {
		return all, nil
	}
	out := make([]domain.Movement, 0, len(all))
	for _, m := range all {
		if m.RequestID == requestID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}
