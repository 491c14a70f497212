package domain

import (
	"fmt"
	"strconv"
	"strings"

	apperror "estoque/internal/errors"
)

// Status é o estado de uma requisição no seu ciclo de vida.
type Status string

const (
	StatusPending   Status = "Pendente"
	StatusApproved  Status = "Aprovada"
	StatusRejected  Status = "Reprovada"
	StatusPurchased Status = "Comprada"
	StatusSent      Status = "Enviada"
	StatusFinished  Status = "Finalizada"
)

// AllStatuses lista os estados na ordem em que aparecem nos relatórios.
var AllStatuses = []Status{StatusPending, StatusApproved, StatusPurchased, StatusSent, StatusFinished, StatusRejected}

// transitions define as únicas transições legais.
var transitions = map[Status]Status{
	StatusApproved:  StatusPending,
	StatusRejected:  StatusPending,
	StatusPurchased: StatusApproved,
	StatusSent:      StatusPurchased,
	StatusFinished:  StatusSent,
}

// ParseStatus aceita o nome do status sem diferenciar maiúsculas.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", apperror.NewValidationError(fmt.Sprintf("Status '%s' desconhecido.", s))
}

// IsTerminal indica os estados que não aceitam mais alterações.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusFinished
}

// CanTransitionTo verifica se a transição s -> to é permitida.
func (s Status) CanTransitionTo(to Status) bool {
	from, ok := transitions[to]
	return ok && from == s
}

// LineItem é uma linha da requisição (formato canônico do requisicoes.json).
type LineItem struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantidade"`
}

// Request é uma requisição de materiais.
type Request struct {
	ID        int        `json:"id"`
	Items     []LineItem `json:"itens"`
	Status    Status     `json:"status"`
	Requester string     `json:"solicitante,omitempty"`
}

// TotalQuantity soma as quantidades de todas as linhas.
func (r Request) TotalQuantity() int {
	total := 0
	for _, it := range r.Items {
		total += it.Quantity
	}
	return total
}

// Demand agrega as quantidades por item, preservando a ordem da primeira ocorrência.
func (r Request) Demand() ([]string, map[string]int) {
	names := make([]string, 0, len(r.Items))
	totals := make(map[string]int, len(r.Items))
	for _, it := range r.Items {
		if _, seen := totals[it.Item]; !seen {
			names = append(names, it.Item)
		}
		totals[it.Item] += it.Quantity
	}
	return names, totals
}

func (r Request) clone() Request {
	c := r
	c.Items = make([]LineItem, len(r.Items))
	copy(c.Items, r.Items)
	return c
}

// LineInput é uma linha digitada pelo usuário, ainda sem validação.
type LineInput struct {
	Item     string
	Quantity string
}

// ParseLines valida as linhas digitadas. Linhas totalmente vazias são ignoradas;
// o erro identifica a linha (1-based) com problema.
func ParseLines(rows []LineInput) ([]LineItem, error) {
	items := make([]LineItem, 0, len(rows))
	for i, row := range rows {
		name := strings.TrimSpace(row.Item)
		qtyText := strings.TrimSpace(row.Quantity)
		if name == "" && qtyText == "" {
			continue
		}
		if name == "" {
			return nil, apperror.NewValidationError(fmt.Sprintf("Nome vazio na linha %d.", i+1))
		}
		qty, err := strconv.Atoi(qtyText)
		if err != nil || qty <= 0 {
			return nil, apperror.NewValidationError(fmt.Sprintf("Quantidade inválida na linha %d.", i+1))
		}
		items = append(items, LineItem{Item: name, Quantity: qty})
	}
	if len(items) == 0 {
		return nil, apperror.NewValidationError("A requisição deve ter ao menos um item.")
	}
	return items, nil
}

// ValidateLines aplica as mesmas regras de ParseLines a linhas já tipadas.
func ValidateLines(items []LineItem) error {
	if len(items) == 0 {
		return apperror.NewValidationError("A requisição deve ter ao menos um item.")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Item) == "" {
			return apperror.NewValidationError(fmt.Sprintf("Nome vazio na linha %d.", i+1))
		}
		if it.Quantity <= 0 {
			return apperror.NewValidationError(fmt.Sprintf("Quantidade inválida na linha %d.", i+1))
		}
	}
	return nil
}

// RequestBook é o conjunto de requisições carregado do arquivo.
type RequestBook struct {
	requests []Request
	dirty    bool
}

// NewRequestBook monta o livro de requisições preservando a ordem do arquivo.
func NewRequestBook(requests []Request) *RequestBook {
	b := &RequestBook{requests: make([]Request, 0, len(requests))}
	for _, r := range requests {
		b.requests = append(b.requests, r.clone())
	}
	return b
}

// NextID retorna 1 para um livro vazio e max(id)+1 caso contrário.
func (b *RequestBook) NextID() int {
	maxID := 0
	for _, r := range b.requests {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}

// Create registra uma nova requisição Pendente.
func (b *RequestBook) Create(items []LineItem, requester string) (Request, error) {
	if err := ValidateLines(items); err != nil {
		return Request{}, err
	}
	req := Request{
		ID:        b.NextID(),
		Items:     items,
		Status:    StatusPending,
		Requester: requester,
	}
	req = req.clone()
	b.requests = append(b.requests, req)
	b.dirty = true
	return req.clone(), nil
}

// Find busca a requisição pelo id.
func (b *RequestBook) Find(id int) (Request, error) {
	pos := b.position(id)
	if pos < 0 {
		return Request{}, apperror.NewNotFoundError(fmt.Sprintf("Requisição %d não encontrada.", id))
	}
	return b.requests[pos].clone(), nil
}

// All retorna cópias de todas as requisições na ordem do arquivo.
func (b *RequestBook) All() []Request {
	out := make([]Request, 0, len(b.requests))
	for _, r := range b.requests {
		out = append(out, r.clone())
	}
	return out
}

// Filter retorna as requisições com um dos status informados (nenhum = todas).
func (b *RequestBook) Filter(statuses ...Status) []Request {
	if len(statuses) == 0 {
		return b.All()
	}
	out := make([]Request, 0)
	for _, r := range b.requests {
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r.clone())
				break
			}
		}
	}
	return out
}

// SetStatus aplica uma transição de status, recusando transições ilegais
// e qualquer alteração em requisições finalizadas ou reprovadas.
func (b *RequestBook) SetStatus(id int, to Status) (Request, error) {
	pos := b.position(id)
	if pos < 0 {
		return Request{}, apperror.NewNotFoundError(fmt.Sprintf("Requisição %d não encontrada.", id))
	}
	cur := b.requests[pos]
	if cur.Status.IsTerminal() {
		return Request{}, apperror.NewConflictError(fmt.Sprintf("A requisição %d está %s e não pode ser alterada.", id, cur.Status))
	}
	if !cur.Status.CanTransitionTo(to) {
		return Request{}, apperror.NewConflictError(fmt.Sprintf("Transição de %s para %s não permitida (requisição %d).", cur.Status, to, id))
	}
	cur.Status = to
	b.requests[pos] = cur
	b.dirty = true
	return cur.clone(), nil
}

// UpdateItems substitui as linhas de uma requisição ainda Pendente.
func (b *RequestBook) UpdateItems(id int, items []LineItem) (Request, error) {
	pos := b.position(id)
	if pos < 0 {
		return Request{}, apperror.NewNotFoundError(fmt.Sprintf("Requisição %d não encontrada.", id))
	}
	if err := ValidateLines(items); err != nil {
		return Request{}, err
	}
	cur := b.requests[pos]
	if cur.Status != StatusPending {
		return Request{}, apperror.NewConflictError(fmt.Sprintf("Só é possível editar requisições pendentes (requisição %d está %s).", id, cur.Status))
	}
	cur.Items = make([]LineItem, len(items))
	copy(cur.Items, items)
	b.requests[pos] = cur
	b.dirty = true
	return cur.clone(), nil
}

// Dirty indica se houve alteração desde o carregamento.
func (b *RequestBook) Dirty() bool { return b.dirty }

func (b *RequestBook) position(id int) int {
	for i, r := range b.requests {
		if r.ID == id {
			return i
		}
	}
	return -1
}
