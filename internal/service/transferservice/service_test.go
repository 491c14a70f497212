package transferservice_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
	"estoque/internal/repository/stockrepo"
	"estoque/internal/service/purchaseservice"
	"estoque/internal/service/requestservice"
	"estoque/internal/service/transferservice"
)

func snapshotWith(status domain.Status, warehouse []domain.Item, lines ...domain.LineItem) *domain.Snapshot {
	return domain.NewSnapshot(
		domain.NewLedger(domain.LocationWarehouse, warehouse),
		nil,
		domain.NewRequestBook([]domain.Request{{ID: 1, Items: lines, Status: status}}),
	)
}

func TestSend_MovesEveryLine(t *testing.T) {
	snap := snapshotWith(domain.StatusPurchased,
		[]domain.Item{
			{Name: "Parafuso", Quantity: 12, UnitValue: decimal.NewFromInt(2)},
			{Name: "Porca", Quantity: 5, UnitValue: decimal.RequireFromString("0.50")},
		},
		domain.LineItem{Item: "Parafuso", Quantity: 10},
		domain.LineItem{Item: "Porca", Quantity: 5},
	)
	totalBefore := snap.Warehouse.Quantity("Parafuso") + snap.Sector.Quantity("Parafuso")

	result, err := transferservice.Send(snap, 1, "carlos")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, result.Request.Status)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, 2, snap.Warehouse.Quantity("Parafuso"))
	assert.Equal(t, 10, snap.Sector.Quantity("Parafuso"))
	assert.Equal(t, 0, snap.Warehouse.Quantity("Porca"))
	assert.Equal(t, 5, snap.Sector.Quantity("Porca"))
	assert.Equal(t, totalBefore, snap.Warehouse.Quantity("Parafuso")+snap.Sector.Quantity("Parafuso"), "quantidade conservada")

	porca, _ := snap.Sector.Get("Porca")
	assert.True(t, porca.UnitValue.Equal(decimal.RequireFromString("0.50")), "setor recebe ao custo do almoxarifado")

	pending := snap.PendingMovements()
	require.Len(t, pending, 2)
	assert.Equal(t, domain.MovementTransfer, pending[0].Type)
	assert.Equal(t, domain.LocationWarehouse, pending[0].From)
	assert.Equal(t, domain.LocationSector, pending[0].To)
	assert.Equal(t, 1, pending[0].RequestID)
	assert.Equal(t, "carlos", pending[0].User)
}

func TestSend_SectorCreditUsesWeightedAverage(t *testing.T) {
	snap := domain.NewSnapshot(
		domain.NewLedger(domain.LocationWarehouse, []domain.Item{{Name: "Luva", Quantity: 10, UnitValue: decimal.NewFromInt(3)}}),
		domain.NewLedger(domain.LocationSector, []domain.Item{{Name: "Luva", Quantity: 10, UnitValue: decimal.NewFromInt(1)}}),
		domain.NewRequestBook([]domain.Request{{ID: 1, Items: []domain.LineItem{{Item: "Luva", Quantity: 10}}, Status: domain.StatusPurchased}}),
	)

	_, err := transferservice.Send(snap, 1, "")

	require.NoError(t, err)
	luva, _ := snap.Sector.Get("Luva")
	assert.Equal(t, 20, luva.Quantity)
	assert.True(t, luva.UnitValue.Equal(decimal.NewFromInt(2)))
}

func TestSend_InsufficientStockChangesNothing(t *testing.T) {
	snap := snapshotWith(domain.StatusPurchased,
		[]domain.Item{
			{Name: "Porca", Quantity: 10, UnitValue: decimal.NewFromInt(1)},
			{Name: "Parafuso", Quantity: 3, UnitValue: decimal.NewFromInt(2)},
		},
		domain.LineItem{Item: "Porca", Quantity: 2},
		domain.LineItem{Item: "Parafuso", Quantity: 5},
	)

	_, err := transferservice.Send(snap, 1, "")

	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Parafuso", stockErr.Item)
	assert.Equal(t, 10, snap.Warehouse.Quantity("Porca"), "linha anterior não foi debitada")
	assert.Equal(t, 3, snap.Warehouse.Quantity("Parafuso"))
	assert.Equal(t, 0, snap.Sector.Len())
	assert.False(t, snap.Warehouse.Dirty())
	assert.Empty(t, snap.PendingMovements())
	req, _ := snap.Requests.Find(1)
	assert.Equal(t, domain.StatusPurchased, req.Status)
}

// Linhas repetidas do mesmo item somam a demanda antes da verificação.
func TestSend_AggregatesRepeatedLines(t *testing.T) {
	snap := snapshotWith(domain.StatusPurchased,
		[]domain.Item{{Name: "Parafuso", Quantity: 4, UnitValue: decimal.NewFromInt(2)}},
		domain.LineItem{Item: "Parafuso", Quantity: 3},
		domain.LineItem{Item: "Parafuso", Quantity: 2},
	)

	_, err := transferservice.Send(snap, 1, "")

	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	assert.Equal(t, 4, snap.Warehouse.Quantity("Parafuso"))
}

func TestSend_WrongStatus(t *testing.T) {
	for _, st := range []domain.Status{domain.StatusPending, domain.StatusApproved, domain.StatusSent, domain.StatusFinished, domain.StatusRejected} {
		snap := snapshotWith(st,
			[]domain.Item{{Name: "Parafuso", Quantity: 10, UnitValue: decimal.NewFromInt(2)}},
			domain.LineItem{Item: "Parafuso", Quantity: 1},
		)

		_, err := transferservice.Send(snap, 1, "")

		assert.IsType(t, &apperror.ConflictError{}, err, "status %s", st)
		assert.Equal(t, 10, snap.Warehouse.Quantity("Parafuso"))
	}
}

func TestReceive_OnlyFromSent(t *testing.T) {
	snap := snapshotWith(domain.StatusSent, nil, domain.LineItem{Item: "Parafuso", Quantity: 1})

	req, err := transferservice.Receive(snap, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, req.Status)
	assert.False(t, snap.Warehouse.Dirty())
	assert.False(t, snap.Sector.Dirty())

	_, err = transferservice.Receive(snap, 1)
	assert.IsType(t, &apperror.ConflictError{}, err)
}

// --- Cenários com o repositório de arquivos ---

func newStore(t *testing.T) (*stockrepo.StockRepository, stockrepo.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := stockrepo.Paths{
		Requests:  filepath.Join(dir, "requisicoes.json"),
		Warehouse: filepath.Join(dir, "almoxarifado.json"),
		Sector:    filepath.Join(dir, "setor.json"),
		Movements: filepath.Join(dir, "movimentacoes.json"),
	}
	return stockrepo.NewStockRepository(paths, 5*time.Second, logger.NewNopLogger()), paths
}

func TestService_SendFailureLeavesFilesUntouched(t *testing.T) {
	repo, paths := newStore(t)
	warehouse := `[{"item": "Parafuso", "quantidade": 3, "valor_unitario": 2.0, "valor_total": 6.0}]`
	requests := `[{"id": 1, "itens": [{"item": "Parafuso", "quantidade": 5}], "status": "Comprada"}]`
	require.NoError(t, os.WriteFile(paths.Warehouse, []byte(warehouse), 0o644))
	require.NoError(t, os.WriteFile(paths.Requests, []byte(requests), 0o644))

	svc := transferservice.NewService(repo, logger.NewLogger("debug"))
	_, err := svc.Send(context.Background(), 1, "carlos")

	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	got, _ := os.ReadFile(paths.Warehouse)
	assert.Equal(t, warehouse, string(got))
	got, _ = os.ReadFile(paths.Requests)
	assert.Equal(t, requests, string(got))
	assert.NoFileExists(t, paths.Sector)
	assert.NoFileExists(t, paths.Movements)
}

// Almoxarifado com 6 parafusos, requisição de 10: compra 4 a 2,00, envia e recebe.
func TestParafusoScenario_EndToEnd(t *testing.T) {
	repo, _ := newStore(t)
	ctx := context.Background()
	log := logger.NewNopLogger()

	require.NoError(t, repo.Update(ctx, func(s *domain.Snapshot) error {
		_, err := s.Warehouse.Credit("Parafuso", 6, decimal.RequireFromString("2.0"))
		return err
	}))

	requests := requestservice.NewService(repo, log)
	purchases := purchaseservice.NewService(repo, log)
	transfers := transferservice.NewService(repo, log)

	req, err := requests.Create(ctx, "func", []domain.LineInput{{Item: "Parafuso", Quantity: "10"}})
	require.NoError(t, err)
	_, err = requests.Approve(ctx, req.ID)
	require.NoError(t, err)

	shortfall, err := purchases.ComputeShortfall(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, []purchaseservice.ShortfallLine{{Item: "Parafuso", Requested: 10, Available: 6, ToBuy: 4}}, shortfall)

	bought, err := purchases.RegisterPurchase(ctx, req.ID, purchaseservice.DefaultPurchase(shortfall, decimal.RequireFromString("2.0")), "comprador")
	require.NoError(t, err)
	assert.True(t, bought.Total.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, domain.StatusPurchased, bought.Request.Status)

	_, err = transfers.Send(ctx, req.ID, "comprador")
	require.NoError(t, err)
	final, err := transfers.Receive(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, final.Status)

	require.NoError(t, repo.View(ctx, func(s *domain.Snapshot) error {
		assert.Equal(t, 0, s.Warehouse.Quantity("Parafuso"))
		parafuso, ok := s.Sector.Get("Parafuso")
		require.True(t, ok)
		assert.Equal(t, 10, parafuso.Quantity)
		assert.True(t, parafuso.UnitValue.Equal(decimal.RequireFromString("2.0")))
		return nil
	}))

	journal, err := repo.Movements(ctx)
	require.NoError(t, err)
	require.Len(t, journal, 2)
	assert.Equal(t, domain.MovementPurchase, journal[0].Type)
	assert.Equal(t, 4, journal[0].Quantity)
	assert.Equal(t, domain.MovementTransfer, journal[1].Type)
	assert.Equal(t, 10, journal[1].Quantity)

	_, err = requests.Approve(ctx, req.ID)
	assert.IsType(t, &apperror.ConflictError{}, err, "finalizada é imutável")
}
