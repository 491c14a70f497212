package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifica uma entrada do diário de movimentações.
type MovementType string

const (
	MovementPurchase MovementType = "compra" // entrada no almoxarifado
	MovementTransfer MovementType = "envio"  // almoxarifado -> setor
	MovementWriteOff MovementType = "baixa"  // saída definitiva
)

// Movement registra uma alteração de quantidade em um estoque.
type Movement struct {
	ID        string
	Type      MovementType
	RequestID int
	Item      string
	Quantity  int
	UnitValue decimal.Decimal
	From      Location
	To        Location
	User      string
	Reason    string
	Date      time.Time
}

// NewMovement cria uma movimentação com ID e data preenchidos.
func NewMovement(kind MovementType, item string, qty int, unitValue decimal.Decimal) Movement {
	return Movement{
		ID:        uuid.New().String(),
		Type:      kind,
		Item:      item,
		Quantity:  qty,
		UnitValue: unitValue,
		Date:      time.Now().UTC(),
	}
}

// TotalValue é quantidade × valor unitário no momento da movimentação.
func (m Movement) TotalValue() decimal.Decimal {
	return m.UnitValue.Mul(decimal.NewFromInt(int64(m.Quantity)))
}
