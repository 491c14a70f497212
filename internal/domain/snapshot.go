package domain

import (
	"fmt"

	apperror "estoque/internal/errors"
)

// Snapshot é o estado carregado dos arquivos para uma unidade de trabalho.
// Alterações acontecem só em memória; o repositório grava os arquivos
// marcados como alterados quando a função de atualização retorna sem erro.
type Snapshot struct {
	Warehouse *Ledger
	Sector    *Ledger
	Requests  *RequestBook
	pending   []Movement
}

// NewSnapshot monta o estado de uma unidade de trabalho.
func NewSnapshot(warehouse, sector *Ledger, requests *RequestBook) *Snapshot {
	if warehouse == nil {
		warehouse = NewLedger(LocationWarehouse, nil)
	}
	if sector == nil {
		sector = NewLedger(LocationSector, nil)
	}
	if requests == nil {
		requests = NewRequestBook(nil)
	}
	return &Snapshot{Warehouse: warehouse, Sector: sector, Requests: requests}
}

// Ledger resolve o estoque de um local.
func (s *Snapshot) Ledger(location Location) (*Ledger, error) {
	switch location {
	case LocationWarehouse:
		return s.Warehouse, nil
	case LocationSector:
		return s.Sector, nil
	}
	return nil, apperror.NewValidationError(fmt.Sprintf("Local '%s' inválido.", location))
}

// Record agenda uma movimentação para ser anexada ao diário no commit.
func (s *Snapshot) Record(m Movement) {
	s.pending = append(s.pending, m)
}

// PendingMovements retorna as movimentações registradas nesta unidade de trabalho.
func (s *Snapshot) PendingMovements() []Movement {
	out := make([]Movement, len(s.pending))
	copy(out, s.pending)
	return out
}
