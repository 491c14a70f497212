package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"estoque/internal/cli/cliutil"
	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/service/reportservice"
)

// ReportService define o contrato que o Handler espera do serviço de relatórios.
type ReportService interface {
	Requests(ctx context.Context, filter reportservice.RequestFilter) (reportservice.RequestReport, error)
	Stock(ctx context.Context, location domain.Location) (reportservice.StockReport, error)
}

// Handler agrupa os comandos 'relatorio ...'.
type Handler struct {
	Service ReportService
	Logger  logger.Logger
	Out     io.Writer
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc ReportService, log logger.Logger, out io.Writer) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
		Out:     out,
	}
}

// RequestsHandler: relatorio requisicoes [-status Todas|Pendente|...] [-solicitante login]
func (h *Handler) RequestsHandler(ctx context.Context, args []string) error {
	var statusText, requester string
	fs := cliutil.NewFlagSet("relatorio requisicoes", h.Out)
	fs.StringVar(&statusText, "status", reportservice.AllLabel, "status das requisições (Todas = sem filtro)")
	fs.StringVar(&requester, "solicitante", "", "login do solicitante (vazio = todos)")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}

	filter := reportservice.RequestFilter{Requester: requester}
	if t := strings.TrimSpace(statusText); t != "" && !strings.EqualFold(t, reportservice.AllLabel) {
		st, err := domain.ParseStatus(t)
		if err != nil {
			return apperror.NewValidationError(fmt.Sprintf("Status '%s' desconhecido.", t))
		}
		filter.Status = st
	}

	rep, err := h.Service.Requests(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintln(h.Out, "Relatório de Requisições")
	fmt.Fprintf(h.Out, "Status: %s | Usuário: %s\n\n", rep.StatusLabel, rep.RequesterLabel)
	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ID", "ITENS", "QUANTIDADE TOTAL", "STATUS")
	for _, r := range rep.Rows {
		cliutil.Row(tw, r.ID, r.Items, r.TotalQuantity, r.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "\nRelatório gerado em: %s\n", rep.GeneratedAt.Format(reportservice.DateLayout))
	return nil
}

// StockHandler: relatorio estoque [-local almoxarifado|setor]
func (h *Handler) StockHandler(ctx context.Context, args []string) error {
	var localText string
	fs := cliutil.NewFlagSet("relatorio estoque", h.Out)
	fs.StringVar(&localText, "local", string(domain.LocationWarehouse), "almoxarifado ou setor")
	if err := cliutil.Parse(fs, args); err != nil {
		return err
	}
	location, err := domain.ParseLocation(localText, domain.LocationWarehouse)
	if err != nil {
		return err
	}

	rep, err := h.Service.Stock(ctx, location)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.Out, "Relatório de Estoque - %s\n\n", rep.Location)
	tw := cliutil.NewTable(h.Out)
	cliutil.Row(tw, "ITEM", "QUANTIDADE", "VALOR UNITÁRIO", "VALOR TOTAL")
	for _, r := range rep.Rows {
		cliutil.Row(tw, r.Item, r.Quantity, cliutil.Money(r.UnitValue), cliutil.Money(r.TotalValue))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(h.Out, "\nValor total: %s\n", cliutil.Money(rep.Total))
	fmt.Fprintf(h.Out, "Relatório gerado em: %s\n", rep.GeneratedAt.Format(reportservice.DateLayout))
	return nil
}
