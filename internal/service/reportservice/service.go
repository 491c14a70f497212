package reportservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
)

// DateLayout é o formato do carimbo "gerado em" dos relatórios.
const DateLayout = "02/01/2006 15:04:05"

// AllLabel é o rótulo usado quando um filtro não foi aplicado.
const AllLabel = "Todas"

// StockRepository define o contrato de leitura que os relatórios precisam.
type StockRepository interface {
	View(ctx context.Context, fn func(s *domain.Snapshot) error) error
}

// RequestFilter restringe o relatório de requisições. Campos vazios não filtram.
type RequestFilter struct {
	Status    domain.Status
	Requester string
}

// RequestRow é uma linha do relatório de requisições.
type RequestRow struct {
	ID            int
	Items         string // "Parafuso (10), Porca (4)"
	TotalQuantity int
	Status        domain.Status
}

// RequestReport é o relatório de requisições pronto para exibição.
type RequestReport struct {
	StatusLabel    string
	RequesterLabel string
	GeneratedAt    time.Time
	Rows           []RequestRow
}

// StockRow é uma linha do relatório de estoque.
type StockRow struct {
	Item       string
	Quantity   int
	UnitValue  decimal.Decimal
	TotalValue decimal.Decimal
}

// StockReport é o relatório de um estoque com o valor total.
type StockReport struct {
	Location    domain.Location
	GeneratedAt time.Time
	Rows        []StockRow
	Total       decimal.Decimal
}

// Service monta os relatórios. Só dados; a formatação fica com quem chama.
type Service struct {
	repo   StockRepository
	logger logger.Logger
	now    func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Relatórios.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithClock troca o relógio usado no carimbo dos relatórios.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Requests gera o relatório de requisições, na ordem do arquivo.
func (s *Service) Requests(ctx context.Context, filter RequestFilter) (RequestReport, error) {
	var requests []domain.Request
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		if filter.Status != "" {
			requests = snap.Requests.Filter(filter.Status)
		} else {
			requests = snap.Requests.All()
		}
		return nil
	})
	if err != nil {
		return RequestReport{}, s.translate(err, "Falha interna ao gerar relatório de requisições.")
	}

	report := RequestReport{
		StatusLabel:    AllLabel,
		RequesterLabel: "Todos",
		GeneratedAt:    s.now(),
		Rows:           make([]RequestRow, 0, len(requests)),
	}
	if filter.Status != "" {
		report.StatusLabel = string(filter.Status)
	}
	requester := strings.TrimSpace(filter.Requester)
	if requester != "" {
		report.RequesterLabel = requester
	}

	for _, r := range requests {
		if requester != "" && r.Requester != requester {
			continue
		}
		report.Rows = append(report.Rows, RequestRow{
			ID:            r.ID,
			Items:         describeItems(r.Items),
			TotalQuantity: r.TotalQuantity(),
			Status:        r.Status,
		})
	}

	s.logger.Debug("Relatório de requisições gerado.", map[string]interface{}{
		"status":      report.StatusLabel,
		"solicitante": report.RequesterLabel,
		"linhas":      len(report.Rows),
	})
	return report, nil
}

// Stock gera o relatório de um estoque.
func (s *Service) Stock(ctx context.Context, location domain.Location) (StockReport, error) {
	report := StockReport{Location: location, GeneratedAt: s.now(), Total: decimal.Zero}
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		ledger, err := snap.Ledger(location)
		if err != nil {
			return err
		}
		for _, it := range ledger.Items() {
			report.Rows = append(report.Rows, StockRow{
				Item:       it.Name,
				Quantity:   it.Quantity,
				UnitValue:  it.UnitValue,
				TotalValue: it.TotalValue(),
			})
		}
		report.Total = ledger.TotalValue()
		return nil
	})
	if err != nil {
		return StockReport{}, s.translate(err, "Falha interna ao gerar relatório de estoque.")
	}

	s.logger.Debug("Relatório de estoque gerado.", map[string]interface{}{"local": string(location), "linhas": len(report.Rows)})
	return report, nil
}

func describeItems(items []domain.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", it.Item, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (s *Service) translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}
