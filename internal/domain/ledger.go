package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperror "estoque/internal/errors"
)

// Location identifica o local físico de um estoque.
type Location string

const (
	LocationWarehouse Location = "almoxarifado"
	LocationSector    Location = "setor"
)

// ParseLocation converte o texto informado pelo usuário em Location.
// Vazio resolve para o valor padrão informado.
func ParseLocation(s string, fallback Location) (Location, error) {
	switch Location(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case LocationWarehouse:
		return LocationWarehouse, nil
	case LocationSector:
		return LocationSector, nil
	}
	return "", apperror.NewValidationError(fmt.Sprintf("Local '%s' inválido. Use 'almoxarifado' ou 'setor'.", s))
}

// Item é uma linha de estoque: quantidade e valor unitário de um material.
type Item struct {
	Name      string
	Quantity  int
	UnitValue decimal.Decimal
}

// TotalValue é sempre derivado: quantidade × valor unitário.
func (i Item) TotalValue() decimal.Decimal {
	return i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Ledger é o estoque de um local, indexado pelo nome do item.
// A ordem de inserção é preservada para que o arquivo regravado mantenha a ordem original.
type Ledger struct {
	Location Location
	items    []Item
	index    map[string]int
	dirty    bool
}

// NewLedger monta um Ledger a partir das linhas carregadas do arquivo.
// Linhas repetidas para o mesmo item são consolidadas com custo médio ponderado.
func NewLedger(location Location, items []Item) *Ledger {
	l := &Ledger{Location: location, index: make(map[string]int, len(items))}
	for _, it := range items {
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		if it.UnitValue.IsNegative() {
			it.UnitValue = decimal.Zero
		}
		pos, ok := l.index[it.Name]
		if !ok {
			l.index[it.Name] = len(l.items)
			l.items = append(l.items, it)
			continue
		}
		cur := l.items[pos]
		if it.Quantity > math.MaxInt-cur.Quantity {
			// soma impossível de representar: satura no máximo
			it.Quantity = math.MaxInt - cur.Quantity
		}
		cur.UnitValue = weightedAverage(cur.Quantity, cur.UnitValue, it.Quantity, it.UnitValue)
		cur.Quantity += it.Quantity
		l.items[pos] = cur
	}
	return l
}

// Get retorna o item pelo nome.
func (l *Ledger) Get(name string) (Item, bool) {
	pos, ok := l.index[name]
	if !ok {
		return Item{}, false
	}
	return l.items[pos], true
}

// Quantity retorna a quantidade disponível (0 quando o item não existe).
func (l *Ledger) Quantity(name string) int {
	it, _ := l.Get(name)
	return it.Quantity
}

// Items retorna uma cópia das linhas na ordem do arquivo.
func (l *Ledger) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Len retorna o número de itens cadastrados.
func (l *Ledger) Len() int { return len(l.items) }

// TotalValue soma o valor total de todos os itens.
func (l *Ledger) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		total = total.Add(it.TotalValue())
	}
	return total
}

// Dirty indica se o Ledger foi alterado desde que foi carregado.
func (l *Ledger) Dirty() bool { return l.dirty }

// Credit adiciona qty unidades ao item, recalculando o custo médio ponderado:
// novo = (qtd_antiga*valor_antigo + qty*unitValue) / (qtd_antiga + qty).
func (l *Ledger) Credit(name string, qty int, unitValue decimal.Decimal) (Item, error) {
	if strings.TrimSpace(name) == "" {
		return Item{}, apperror.NewValidationError("O nome do item não pode ser vazio.")
	}
	if qty <= 0 {
		return Item{}, apperror.NewValidationError(fmt.Sprintf("A quantidade de entrada de %s deve ser positiva.", name))
	}
	if unitValue.IsNegative() {
		return Item{}, apperror.NewValidationError(fmt.Sprintf("O valor unitário de %s não pode ser negativo.", name))
	}

	pos, ok := l.index[name]
	if ok && qty > math.MaxInt-l.items[pos].Quantity {
		return Item{}, apperror.NewValidationError(fmt.Sprintf("A entrada de %d unidades de %s excede a quantidade máxima suportada.", qty, name))
	}

	l.dirty = true
	if !ok {
		it := Item{Name: name, Quantity: qty, UnitValue: unitValue}
		l.index[name] = len(l.items)
		l.items = append(l.items, it)
		return it, nil
	}

	cur := l.items[pos]
	cur.UnitValue = weightedAverage(cur.Quantity, cur.UnitValue, qty, unitValue)
	cur.Quantity += qty
	l.items[pos] = cur
	return cur, nil
}

// CanDebit verifica, sem alterar nada, se qty unidades podem sair do estoque.
func (l *Ledger) CanDebit(name string, qty int) error {
	if qty <= 0 {
		return apperror.NewValidationError(fmt.Sprintf("A quantidade de saída de %s deve ser positiva.", name))
	}
	it, ok := l.Get(name)
	if !ok {
		return apperror.NewInsufficientStockError(name, qty, 0)
	}
	if it.Quantity < qty {
		return apperror.NewInsufficientStockError(name, qty, it.Quantity)
	}
	return nil
}

// Debit remove qty unidades do item. Falha com InsufficientStock sem alterar o Ledger.
func (l *Ledger) Debit(name string, qty int) (Item, error) {
	if err := l.CanDebit(name, qty); err != nil {
		return Item{}, err
	}
	pos := l.index[name]
	cur := l.items[pos]
	cur.Quantity -= qty
	l.items[pos] = cur
	l.dirty = true
	return cur, nil
}

// Clone cria uma cópia independente (usada para validar antes de aplicar).
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Location: l.Location,
		items:    l.Items(),
		index:    make(map[string]int, len(l.index)),
		dirty:    l.dirty,
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	return c
}

func weightedAverage(oldQty int, oldUnit decimal.Decimal, qty int, unit decimal.Decimal) decimal.Decimal {
	total := oldQty + qty
	if total <= 0 {
		return unit
	}
	num := oldUnit.Mul(decimal.NewFromInt(int64(oldQty))).Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	return num.Div(decimal.NewFromInt(int64(total)))
}
