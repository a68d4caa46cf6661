package itemservice

import (
	"context"
	"strings"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// ItemRepository define o contrato de persistência do catálogo de itens.
type ItemRepository interface {
	FindByID(ctx context.Context, id string) (domain.Item, error)
	FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Save(ctx context.Context, item domain.Item) (domain.Item, error)
	Update(ctx context.Context, item domain.Item) (domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// LogAppender define o contrato de escrita no log de atividades.
type LogAppender interface {
	Append(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error)
}

// Service implementa a lógica de negócio do catálogo de itens.
// Toda mutação do catálogo produz um registro no log de atividades, que
// alimenta o motor de previsão.
type Service struct {
	repo   ItemRepository
	logs   LogAppender
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Itens.
func NewService(repo ItemRepository, logs LogAppender, logger logger.Logger) *Service {
	return &Service{repo: repo, logs: logs, logger: logger}
}

// validateItem é uma função auxiliar para validar os campos de um item.
func (s *Service) validateItem(item domain.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return apperror.NewValidationError("O nome do item não pode ser vazio.")
	}
	if item.Quantity < 0 {
		return apperror.NewValidationError("A quantidade do item não pode ser negativa.")
	}
	if item.LowStockThreshold < 0 {
		return apperror.NewValidationError("O limite de estoque baixo não pode ser negativo.")
	}
	if strings.TrimSpace(item.Warehouse) == "" {
		return apperror.NewValidationError("O armazém do item é obrigatório.")
	}
	return nil
}

// toGoContext converte domain.Context para context.Context.
func (s *Service) toGoContext(ctx domain.Context, op string) context.Context {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para "+op, nil)
	}
	return ctxGo
}

// CreateItem cria um novo item no catálogo e registra a ação 'add' no log.
func (s *Service) CreateItem(ctx domain.Context, item domain.Item) (domain.Item, error) {
	if err := s.validateItem(item); err != nil {
		return domain.Item{}, err
	}

	ctxGo := s.toGoContext(ctx, "CreateItem")

	created, err := s.repo.Save(ctxGo, item)
	if err != nil {
		s.logger.Error("Falha ao criar item no repositório.", err)
		return domain.Item{}, err
	}

	// Efeito colateral: registra a criação no log de atividades.
	// Entradas 'add' ficam fora da janela de demanda (a previsão só
	// considera 'transfer' e 'update').
	initial := created.Quantity
	if _, err := s.logs.Append(ctxGo, domain.LogEntry{
		Action:  domain.ActionAdd,
		ItemID:  created.ID,
		Details: domain.LogDetails{Quantity: &initial, Note: "item criado"},
	}); err != nil {
		// O item já foi criado; a falha no log é registrada mas não desfaz a criação
		s.logger.Error("Falha ao registrar log de criação de item.", err)
	}

	s.logger.Info("Item criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetItemByID busca um item pelo ID.
func (s *Service) GetItemByID(ctx domain.Context, id string) (domain.Item, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Item{}, apperror.NewValidationError("O ID do item é obrigatório.")
	}

	ctxGo := s.toGoContext(ctx, "GetItemByID")
	return s.repo.FindByID(ctxGo, id)
}

// ListItems lista os itens do catálogo, com filtro opcional por armazém.
func (s *Service) ListItems(ctx domain.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	ctxGo := s.toGoContext(ctx, "ListItems")

	items, err := s.repo.FindAll(ctxGo, filter)
	if err != nil {
		s.logger.Error("Falha ao listar itens no repositório.", err)
		return nil, err
	}
	return items, nil
}

// UpdateItem atualiza um item existente e registra a ação 'update' no log.
// O delta registrado é a quantidade consumida (positivo quando o estoque
// diminuiu); reposições entram como delta negativo e ficam fora da demanda.
func (s *Service) UpdateItem(ctx domain.Context, item domain.Item) (domain.Item, error) {
	if strings.TrimSpace(item.ID) == "" {
		return domain.Item{}, apperror.NewValidationError("O ID do item é obrigatório.")
	}
	if err := s.validateItem(item); err != nil {
		return domain.Item{}, err
	}

	ctxGo := s.toGoContext(ctx, "UpdateItem")

	// Busca o estado anterior para derivar o delta de quantidade
	existing, err := s.repo.FindByID(ctxGo, item.ID)
	if err != nil {
		return domain.Item{}, err // NotFoundError ou DBError
	}

	item.CreatedAt = existing.CreatedAt
	updated, err := s.repo.Update(ctxGo, item)
	if err != nil {
		s.logger.Error("Falha ao atualizar item no repositório.", err)
		return domain.Item{}, err
	}

	consumed := existing.Quantity - updated.Quantity
	if _, err := s.logs.Append(ctxGo, domain.LogEntry{
		Action:  domain.ActionUpdate,
		ItemID:  updated.ID,
		Details: domain.LogDetails{Quantity: &consumed},
	}); err != nil {
		s.logger.Error("Falha ao registrar log de atualização de item.", err)
	}

	s.logger.Info("Item atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "name": updated.Name})
	return updated, nil
}

// DeleteItem remove um item do catálogo e registra a ação 'delete' no log.
func (s *Service) DeleteItem(ctx domain.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.NewValidationError("O ID do item é obrigatório.")
	}

	ctxGo := s.toGoContext(ctx, "DeleteItem")

	item, err := s.repo.FindByID(ctxGo, id)
	if err != nil {
		return err // NotFoundError ou DBError
	}

	if err := s.repo.Delete(ctxGo, id); err != nil {
		s.logger.Error("Falha ao deletar item no repositório.", err)
		return err
	}

	if _, err := s.logs.Append(ctxGo, domain.LogEntry{
		Action:  domain.ActionDelete,
		ItemID:  id,
		Details: domain.LogDetails{Note: "item '" + item.Name + "' removido"},
	}); err != nil {
		s.logger.Error("Falha ao registrar log de remoção de item.", err)
	}

	s.logger.Info("Item deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// CreateLog registra manualmente uma entrada no log de atividades
// (ajustes e correções feitos por operadores).
func (s *Service) CreateLog(ctx domain.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	if !entry.Action.IsValid() {
		return domain.LogEntry{}, apperror.NewValidationError("Ação de log desconhecida: " + string(entry.Action))
	}
	if strings.TrimSpace(entry.ItemID) == "" {
		return domain.LogEntry{}, apperror.NewValidationError("O ID do item é obrigatório.")
	}

	ctxGo := s.toGoContext(ctx, "CreateLog")

	// O item referenciado precisa existir (referência, não ownership)
	if _, err := s.repo.FindByID(ctxGo, entry.ItemID); err != nil {
		return domain.LogEntry{}, err
	}

	created, err := s.logs.Append(ctxGo, entry)
	if err != nil {
		s.logger.Error("Falha ao registrar log manual.", err)
		return domain.LogEntry{}, err
	}

	return created, nil
}
