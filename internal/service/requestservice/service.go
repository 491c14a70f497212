package requestservice

import (
	"context"
	"errors"

	"estoque/internal/domain"
	apperror "estoque/internal/errors"
	"estoque/internal/pkg/logger"
)

// RequestRepository define o contrato que o Serviço de Requisições espera da camada de Persistência.
type RequestRepository interface {
	View(ctx context.Context, fn func(s *domain.Snapshot) error) error
	Update(ctx context.Context, fn func(s *domain.Snapshot) error) error
}

// Service implementa as operações do livro de requisições.
type Service struct {
	repo   RequestRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Requisições.
func NewService(repo RequestRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create valida as linhas digitadas e registra uma nova requisição Pendente.
func (s *Service) Create(ctx context.Context, requester string, rows []domain.LineInput) (domain.Request, error) {
	s.logger.Debug("Iniciando criação de requisição no serviço.", map[string]interface{}{"solicitante": requester, "linhas": len(rows)})

	items, err := domain.ParseLines(rows)
	if err != nil {
		s.logger.Warn("Falha na validação das linhas da requisição.", map[string]interface{}{"error": err.Error()})
		return domain.Request{}, err
	}

	var created domain.Request
	err = s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var createErr error
		created, createErr = snap.Requests.Create(items, requester)
		return createErr
	})
	if err != nil {
		return domain.Request{}, s.translate(err, "Falha interna ao criar requisição.")
	}

	s.logger.Info("Requisição criada com sucesso.", map[string]interface{}{"id": created.ID, "itens": len(created.Items)})
	return created, nil
}

// UpdateItems substitui as linhas de uma requisição Pendente.
func (s *Service) UpdateItems(ctx context.Context, id int, rows []domain.LineInput) (domain.Request, error) {
	s.logger.Debug("Iniciando edição de requisição no serviço.", map[string]interface{}{"id": id})

	items, err := domain.ParseLines(rows)
	if err != nil {
		s.logger.Warn("Falha na validação das linhas da requisição.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Request{}, err
	}

	var updated domain.Request
	err = s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var updateErr error
		updated, updateErr = snap.Requests.UpdateItems(id, items)
		return updateErr
	})
	if err != nil {
		return domain.Request{}, s.translate(err, "Falha interna ao editar requisição.")
	}

	s.logger.Info("Requisição editada com sucesso.", map[string]interface{}{"id": id})
	return updated, nil
}

// GetByID busca uma requisição.
func (s *Service) GetByID(ctx context.Context, id int) (domain.Request, error) {
	var found domain.Request
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		var findErr error
		found, findErr = snap.Requests.Find(id)
		return findErr
	})
	if err != nil {
		return domain.Request{}, s.translate(err, "Falha interna ao buscar requisição.")
	}
	return found, nil
}

// List retorna as requisições com os status informados (nenhum = todas).
func (s *Service) List(ctx context.Context, statuses ...domain.Status) ([]domain.Request, error) {
	var list []domain.Request
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		list = snap.Requests.Filter(statuses...)
		return nil
	})
	if err != nil {
		return nil, s.translate(err, "Falha interna ao listar requisições.")
	}
	s.logger.Debug("Requisições listadas.", map[string]interface{}{"count": len(list)})
	return list, nil
}

// NextID informa o id que a próxima requisição receberá.
func (s *Service) NextID(ctx context.Context) (int, error) {
	next := 0
	err := s.repo.View(ctx, func(snap *domain.Snapshot) error {
		next = snap.Requests.NextID()
		return nil
	})
	if err != nil {
		return 0, s.translate(err, "Falha interna ao calcular próximo id.")
	}
	return next, nil
}

// Approve move uma requisição Pendente para Aprovada.
func (s *Service) Approve(ctx context.Context, id int) (domain.Request, error) {
	return s.transition(ctx, id, domain.StatusApproved)
}

// Reject move uma requisição Pendente para Reprovada (estado terminal).
func (s *Service) Reject(ctx context.Context, id int) (domain.Request, error) {
	return s.transition(ctx, id, domain.StatusRejected)
}

func (s *Service) transition(ctx context.Context, id int, to domain.Status) (domain.Request, error) {
	s.logger.Debug("Iniciando mudança de status.", map[string]interface{}{"id": id, "para": string(to)})

	var updated domain.Request
	err := s.repo.Update(ctx, func(snap *domain.Snapshot) error {
		var setErr error
		updated, setErr = snap.Requests.SetStatus(id, to)
		return setErr
	})
	if err != nil {
		s.logger.Warn("Mudança de status recusada.", map[string]interface{}{"id": id, "para": string(to), "error": err.Error()})
		return domain.Request{}, s.translate(err, "Falha interna ao alterar status.")
	}

	s.logger.Info("Status da requisição alterado.", map[string]interface{}{"id": id, "status": string(updated.Status)})
	return updated, nil
}

// translate preserva erros tipados e encapsula o resto como InternalError.
func (s *Service) translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}
