package stockrepo

import (
	"context"
	"errors"
	"sync"
	"time"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/jsonfile"
	"estoque/internal/pkg/logger"
)

// Paths reúne os caminhos dos arquivos mantidos por este repositório.
type Paths struct {
	Requests  string
	Warehouse string
	Sector    string
	Movements string
}

// StockRepository é o repositório de estoques e requisições sobre arquivos JSON.
// Cada operação carrega os arquivos, aplica a função do serviço em memória e
// grava de uma vez apenas os arquivos alterados. O mutex serializa as
// unidades de trabalho dentro do processo.
type StockRepository struct {
	Paths     Paths
	IOTimeout time.Duration
	logger    logger.Logger
	mu        sync.Mutex
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(paths Paths, ioTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		Paths:     paths,
		IOTimeout: ioTimeout,
		logger:    logger,
	}
}

// View carrega o estado atual e executa fn sem gravar nada.
func (r *StockRepository) View(ctx context.Context, fn func(s *domain.Snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperror.NewInternalError("Operação cancelada antes da leitura.", err)
	}
	snap, err := r.load()
	if err != nil {
		return err
	}
	return fn(snap)
}

// Update executa fn sobre um estado recém-carregado e, se fn não falhar,
// grava os arquivos alterados. Se fn falhar nada é gravado (equivalente ao Rollback).
func (r *StockRepository) Update(ctx context.Context, fn func(s *domain.Snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctxTimeout, cancel := r.withTimeout(ctx)
	defer cancel()

	snap, err := r.load()
	if err != nil {
		return err
	}

	if err := fn(snap); err != nil {
		r.logger.Debug("Unidade de trabalho abortada; nada foi gravado.", map[string]interface{}{"error": err.Error()})
		return err
	}

	return r.commit(ctxTimeout, snap)
}

// Movements retorna o diário completo de movimentações.
func (r *StockRepository) Movements(ctx context.Context) ([]domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, apperror.NewInternalError("Operação cancelada antes da leitura.", err)
	}
	return r.loadMovements(), nil
}

// Rewrite regrava todos os arquivos no esquema canônico, mesmo sem alterações.
// Usado pela ferramenta de migração para eliminar chaves legadas.
func (r *StockRepository) Rewrite(ctx context.Context) (RewriteSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctxTimeout, cancel := r.withTimeout(ctx)
	defer cancel()

	snap, err := r.load()
	if err != nil {
		return RewriteSummary{}, err
	}
	movements := r.loadMovements()

	batch := jsonfile.NewBatch()
	stage := func(path string, v interface{}) error {
		if err := batch.Stage(path, v); err != nil {
			batch.Abort()
			r.logger.Error("Falha ao preparar arquivo para migração.", err)
			return apperror.NewIOError("Falha ao preparar "+path, err)
		}
		return nil
	}
	if err := stage(r.Paths.Warehouse, recordsFromItems(snap.Warehouse.Items())); err != nil {
		return RewriteSummary{}, err
	}
	if err := stage(r.Paths.Sector, recordsFromItems(snap.Sector.Items())); err != nil {
		return RewriteSummary{}, err
	}
	if err := stage(r.Paths.Requests, snap.Requests.All()); err != nil {
		return RewriteSummary{}, err
	}
	if err := stage(r.Paths.Movements, recordsFromMovements(movements)); err != nil {
		return RewriteSummary{}, err
	}

	if err := ctxTimeout.Err(); err != nil {
		batch.Abort()
		return RewriteSummary{}, apperror.NewInternalError("Migração cancelada antes da gravação.", err)
	}
	if err := batch.Commit(); err != nil {
		r.logger.Error("Falha ao gravar arquivos migrados.", err)
		return RewriteSummary{}, apperror.NewIOError("Falha ao gravar arquivos migrados", err)
	}

	summary := RewriteSummary{
		WarehouseItems: snap.Warehouse.Len(),
		SectorItems:    snap.Sector.Len(),
		Requests:       len(snap.Requests.All()),
		Movements:      len(movements),
	}
	r.logger.Info("Arquivos regravados no formato canônico.", map[string]interface{}{
		"almoxarifado":  summary.WarehouseItems,
		"setor":         summary.SectorItems,
		"requisicoes":   summary.Requests,
		"movimentacoes": summary.Movements,
	})
	return summary, nil
}

// RewriteSummary informa quantos registros foram regravados por arquivo.
type RewriteSummary struct {
	WarehouseItems int
	SectorItems    int
	Requests       int
	Movements      int
}

func (r *StockRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.IOTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.IOTimeout)
}

// load lê os três arquivos principais. Arquivo ausente ou corrompido vira coleção vazia.
func (r *StockRepository) load() (*domain.Snapshot, error) {
	var warehouseRecs, sectorRecs []itemRecord
	var requestRecs []requestRecord

	r.read(r.Paths.Warehouse, &warehouseRecs)
	r.read(r.Paths.Sector, &sectorRecs)
	r.read(r.Paths.Requests, &requestRecs)

	warehouseItems, droppedW := itemsFromRecords(warehouseRecs)
	sectorItems, droppedS := itemsFromRecords(sectorRecs)
	requests, droppedR := requestsFromRecords(requestRecs)
	if dropped := droppedW + droppedS + droppedR; dropped > 0 {
		r.logger.Warn("Linhas sem nome de item foram descartadas na leitura.", map[string]interface{}{"linhas": dropped})
	}

	r.logger.Debug("Estado carregado dos arquivos.", map[string]interface{}{
		"almoxarifado": len(warehouseItems),
		"setor":        len(sectorItems),
		"requisicoes":  len(requests),
	})

	return domain.NewSnapshot(
		domain.NewLedger(domain.LocationWarehouse, warehouseItems),
		domain.NewLedger(domain.LocationSector, sectorItems),
		domain.NewRequestBook(requests),
	), nil
}

func (r *StockRepository) loadMovements() []domain.Movement {
	var recs []movementRecord
	r.read(r.Paths.Movements, &recs)
	return movementsFromRecords(recs)
}

// read decodifica path em v. Ausente ou corrompido: v fica vazio e registramos um aviso.
func (r *StockRepository) read(path string, v interface{}) {
	found, err := jsonfile.Read(path, v)
	if err == nil {
		if !found {
			r.logger.Debug("Arquivo não encontrado; usando coleção vazia.", map[string]interface{}{"path": path})
		}
		return
	}
	if errors.Is(err, jsonfile.ErrCorrupt) {
		r.logger.Warn("Arquivo corrompido; usando coleção vazia.", map[string]interface{}{"path": path, "error": err.Error()})
	} else {
		r.logger.Warn("Falha ao ler arquivo; usando coleção vazia.", map[string]interface{}{"path": path, "error": err.Error()})
	}
}

// commit prepara todos os arquivos alterados e só então publica. Qualquer falha
// antes da publicação descarta os temporários e deixa os arquivos intactos.
func (r *StockRepository) commit(ctx context.Context, snap *domain.Snapshot) error {
	batch := jsonfile.NewBatch()
	touched := make([]string, 0, 4)

	stage := func(path string, v interface{}) error {
		if err := batch.Stage(path, v); err != nil {
			batch.Abort()
			r.logger.Error("Falha ao preparar gravação.", err)
			return apperror.NewIOError("Falha ao gravar "+path, err)
		}
		touched = append(touched, path)
		return nil
	}

	if snap.Warehouse.Dirty() {
		if err := stage(r.Paths.Warehouse, recordsFromItems(snap.Warehouse.Items())); err != nil {
			return err
		}
	}
	if snap.Sector.Dirty() {
		if err := stage(r.Paths.Sector, recordsFromItems(snap.Sector.Items())); err != nil {
			return err
		}
	}
	if snap.Requests.Dirty() {
		if err := stage(r.Paths.Requests, snap.Requests.All()); err != nil {
			return err
		}
	}
	if pending := snap.PendingMovements(); len(pending) > 0 {
		journal := append(r.loadMovements(), pending...)
		if err := stage(r.Paths.Movements, recordsFromMovements(journal)); err != nil {
			return err
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		batch.Abort()
		r.logger.Warn("Contexto encerrado antes do commit; alterações descartadas.", map[string]interface{}{"error": err.Error()})
		return apperror.NewInternalError("Operação cancelada antes da gravação.", err)
	}

	if err := batch.Commit(); err != nil {
		r.logger.Error("Falha ao publicar arquivos alterados.", err)
		return apperror.NewIOError("Falha ao gravar alterações", err)
	}

	r.logger.Debug("Alterações gravadas.", map[string]interface{}{"arquivos": touched})
	return nil
}
