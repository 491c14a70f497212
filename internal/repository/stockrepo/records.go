package stockrepo

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"estoque/internal/domain"
)

// itemRecord é o formato lido de almoxarifado.json / setor.json.
// O decoder do encoding/json compara chaves sem diferenciar maiúsculas,
// então "Quantidade" e "Nome" também caem aqui; "nome" é a chave legada de "item".
type itemRecord struct {
	Item          string  `json:"item"`
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	ValorUnitario float64 `json:"valor_unitario"`
}

// itemOut é o formato canônico gravado.
type itemOut struct {
	Item          string  `json:"item"`
	Quantidade    int     `json:"quantidade"`
	ValorUnitario float64 `json:"valor_unitario"`
	ValorTotal    float64 `json:"valor_total"`
}

type lineRecord struct {
	Item       string  `json:"item"`
	Nome       string  `json:"nome"`
	Quantidade float64 `json:"quantidade"`
}

type requestRecord struct {
	ID          int          `json:"id"`
	Itens       []lineRecord `json:"itens"`
	Status      string       `json:"status"`
	Solicitante string       `json:"solicitante"`
}

type movementRecord struct {
	ID            string    `json:"id"`
	Tipo          string    `json:"tipo"`
	Requisicao    int       `json:"requisicao,omitempty"`
	Item          string    `json:"item"`
	Quantidade    int       `json:"quantidade"`
	ValorUnitario float64   `json:"valor_unitario"`
	ValorTotal    float64   `json:"valor_total"`
	Origem        string    `json:"origem,omitempty"`
	Destino       string    `json:"destino,omitempty"`
	Usuario       string    `json:"usuario,omitempty"`
	Motivo        string    `json:"motivo,omitempty"`
	Data          time.Time `json:"data"`
}

// normalizeName resolve a chave canônica "item" com fallback para a legada "nome".
func normalizeName(item, nome string) string {
	if name := strings.TrimSpace(item); name != "" {
		return name
	}
	return strings.TrimSpace(nome)
}

func toQuantity(v float64) int {
	return int(math.Round(v))
}

// Conversões registro <-> domínio. Linhas sem nome são descartadas e contadas.

func itemsFromRecords(records []itemRecord) ([]domain.Item, int) {
	items := make([]domain.Item, 0, len(records))
	dropped := 0
	for _, rec := range records {
		name := normalizeName(rec.Item, rec.Nome)
		if name == "" {
			dropped++
			continue
		}
		items = append(items, domain.Item{
			Name:      name,
			Quantity:  toQuantity(rec.Quantidade),
			UnitValue: decimal.NewFromFloat(rec.ValorUnitario),
		})
	}
	return items, dropped
}

func recordsFromItems(items []domain.Item) []itemOut {
	out := make([]itemOut, 0, len(items))
	for _, it := range items {
		out = append(out, itemOut{
			Item:          it.Name,
			Quantidade:    it.Quantity,
			ValorUnitario: it.UnitValue.InexactFloat64(),
			ValorTotal:    it.TotalValue().InexactFloat64(),
		})
	}
	return out
}

func requestsFromRecords(records []requestRecord) ([]domain.Request, int) {
	requests := make([]domain.Request, 0, len(records))
	dropped := 0
	for _, rec := range records {
		req := domain.Request{
			ID:        rec.ID,
			Status:    domain.Status(strings.TrimSpace(rec.Status)),
			Requester: rec.Solicitante,
			Items:     make([]domain.LineItem, 0, len(rec.Itens)),
		}
		if req.Status == "" {
			req.Status = domain.StatusPending
		}
		if st, err := domain.ParseStatus(string(req.Status)); err == nil {
			req.Status = st
		}
		for _, line := range rec.Itens {
			name := normalizeName(line.Item, line.Nome)
			if name == "" {
				dropped++
				continue
			}
			req.Items = append(req.Items, domain.LineItem{Item: name, Quantity: toQuantity(line.Quantidade)})
		}
		requests = append(requests, req)
	}
	return requests, dropped
}

func movementsFromRecords(records []movementRecord) []domain.Movement {
	out := make([]domain.Movement, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Movement{
			ID:        rec.ID,
			Type:      domain.MovementType(rec.Tipo),
			RequestID: rec.Requisicao,
			Item:      rec.Item,
			Quantity:  rec.Quantidade,
			UnitValue: decimal.NewFromFloat(rec.ValorUnitario),
			From:      domain.Location(rec.Origem),
			To:        domain.Location(rec.Destino),
			User:      rec.Usuario,
			Reason:    rec.Motivo,
			Date:      rec.Data,
		})
	}
	return out
}

func recordsFromMovements(movements []domain.Movement) []movementRecord {
	out := make([]movementRecord, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementRecord{
			ID:            m.ID,
			Tipo:          string(m.Type),
			Requisicao:    m.RequestID,
			Item:          m.Item,
			Quantidade:    m.Quantity,
			ValorUnitario: m.UnitValue.InexactFloat64(),
			ValorTotal:    m.TotalValue().InexactFloat64(),
			Origem:        string(m.From),
			Destino:       string(m.To),
			Usuario:       m.User,
			Motivo:        m.Reason,
			Data:          m.Date,
		})
	}
	return out
}
