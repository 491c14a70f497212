package transferservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
)

// StockRepository define o contrato que o motor de transferência espera da persistência.
type StockRepository interface {
	Update(ctx context.Context, fn func(s *domain.Snapshot) error) error
}

// Line é uma linha movimentada do almoxarifado para o setor.
type Line struct {
	Item      string
	Quantity  int
	UnitValue decimal.Decimal
}

// Result descreve o envio aplicado.
type Result struct {
	Request domain.Request
	Lines   []Line
}

// Service é o motor de transferência almoxarifado -> setor.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do motor de transferência.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Send movimenta todos os itens de uma requisição Comprada do almoxarifado para o setor.
// Ou todas as linhas são aplicadas, ou nenhuma.
func (s *Service) Send(ctx context.Context, id int, user string) (Result, error) {
	s.logger.Debug("Iniciando envio de requisição.", map[string]interface{}{"id": id, "usuario": user})

	var result Result
	err := s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var sendErr error
		result, sendErr = Send(snap, id, user)
		return sendErr
	})
	if err != nil {
		s.logger.Warn("Envio recusado; estoques e requisição inalterados.", map[string]interface{}{"id": id, "error": err.Error()})
		return Result{}, s.translate(err, "Falha interna ao enviar requisição.")
	}

	s.logger.Info("Requisição enviada ao setor.", map[string]interface{}{"id": id, "linhas": len(result.Lines)})
	return result, nil
}

// Receive confirma o recebimento no setor. O estoque já foi movido no envio.
func (s *Service) Receive(ctx context.Context, id int) (domain.Request, error) {
	s.logger.Debug("Iniciando recebimento de requisição.", map[string]interface{}{"id": id})

	var updated domain.Request
	err := s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var recvErr error
		updated, recvErr = Receive(snap, id)
		return recvErr
	})
	if err != nil {
		s.logger.Warn("Recebimento recusado.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Request{}, s.translate(err, "Falha interna ao receber requisição.")
	}

	s.logger.Info("Requisição finalizada.", map[string]interface{}{"id": id})
	return updated, nil
}

// Send aplica o envio sobre um Snapshot. Primeiro valida a transição e a
// disponibilidade de cada item (demanda agregada por nome); só depois altera
// os estoques, então uma falha nunca deixa o Snapshot parcialmente alterado.
func Send(snap *domain.Snapshot, id int, user string) (Result, error) {
	req, err := snap.Requests.Find(id)
	if err != nil {
		return Result{}, err
	}
	if err := checkTransition(req, domain.StatusSent); err != nil {
		return Result{}, err
	}

	names, demand := req.Demand()
	for _, name := range names {
		if err := snap.Warehouse.CanDebit(name, demand[name]); err != nil {
			return Result{}, err
		}
	}

	lines := make([]Line, 0, len(names))
	for _, name := range names {
		qty := demand[name]
		source, _ := snap.Warehouse.Get(name)
		if _, err := snap.Warehouse.Debit(name, qty); err != nil {
			return Result{}, err
		}
		if _, err := snap.Sector.Credit(name, qty, source.UnitValue); err != nil {
			return Result{}, err
		}

		m := domain.NewMovement(domain.MovementTransfer, name, qty, source.UnitValue)
		m.RequestID = req.ID
		m.From = domain.LocationWarehouse
		m.To = domain.LocationSector
		m.User = user
		snap.Record(m)

		lines = append(lines, Line{Item: name, Quantity: qty, UnitValue: source.UnitValue})
	}

	updated, err := snap.Requests.SetStatus(id, domain.StatusSent)
	if err != nil {
		return Result{}, err
	}
	return Result{Request: updated, Lines: lines}, nil
}

// Receive marca a requisição Enviada como Finalizada, sem tocar nos estoques.
func Receive(snap *domain.Snapshot, id int) (domain.Request, error) {
	return snap.Requests.SetStatus(id, domain.StatusFinished)
}

func checkTransition(req domain.Request, to domain.Status) error {
	if req.Status.IsTerminal() {
		return apperror.NewConflictError(fmt.Sprintf("A requisição %d está %s e não pode ser alterada.", req.ID, req.Status))
	}
	if !req.Status.CanTransitionTo(to) {
		return apperror.NewConflictError(fmt.Sprintf("Transição de %s para %s não permitida (requisição %d).", req.Status, to, req.ID))
	}
	return nil
}

func (s *Service) translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}
