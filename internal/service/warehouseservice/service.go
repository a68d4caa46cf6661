package warehouseservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// WarehouseRepository define o contrato que o Serviço de Armazéns espera da
// camada de Persistência. A unicidade do nome é garantida pelo repositório
// (índice único), que traduz violações para ConflictError.
type WarehouseRepository interface {
	CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
}

// QuantityReader define o acesso aos agregados de quantidade por armazém
// (que vivem no catálogo de itens, não no registro de armazéns).
type QuantityReader interface {
	WarehouseQuantities(ctx context.Context) ([]domain.WarehouseQuantity, error)
}

// Service é a estrutura que implementa a lógica de negócio do registro de armazéns.
type Service struct {
	repo   WarehouseRepository
	stats  QuantityReader
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Armazéns.
func NewService(repo WarehouseRepository, stats QuantityReader, logger logger.Logger) *Service {
	return &Service{repo: repo, stats: stats, logger: logger}
}

// CreateWarehouse cria um novo armazém após validações de negócio.
func (s *Service) CreateWarehouse(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando criação de armazém no serviço.", map[string]interface{}{"name": warehouse.Name})

	if err := s.validateWarehouseName(warehouse.Name); err != nil {
		s.logger.Warn("Falha na validação do nome do armazém.", map[string]interface{}{"name": warehouse.Name, "error": err.Error()})
		return domain.Warehouse{}, err
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para CreateWarehouse", nil)
	}

	createdWarehouse, err := s.repo.CreateWarehouse(ctxGo, warehouse)
	if err != nil {
		s.logger.Error("Falha ao criar armazém no repositório.", err)
		return domain.Warehouse{}, err // ConflictError (nome duplicado) ou DBError
	}

	s.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": createdWarehouse.ID, "name": createdWarehouse.Name})
	return createdWarehouse, nil
}

// GetWarehouseByID busca um armazém pelo ID após validações de formato.
func (s *Service) GetWarehouseByID(ctx domain.Context, id string) (domain.Warehouse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Warehouse{}, apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetWarehouseByID", nil)
	}

	warehouse, err := s.repo.GetWarehouseByID(ctxGo, id)
	if err != nil {
		return domain.Warehouse{}, err // Erros do repositório já são NotFoundError ou DBError
	}

	return warehouse, nil
}

// GetAllWarehouses busca todos os armazéns.
func (s *Service) GetAllWarehouses(ctx domain.Context) ([]domain.Warehouse, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetAllWarehouses", nil)
	}

	warehouses, err := s.repo.GetAllWarehouses(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar todos os armazéns no repositório.", err)
		return nil, err
	}

	return warehouses, nil
}

// UpdateWarehouse atualiza um armazém existente. Campos vazios no payload
// mantêm os valores atuais (semântica de atualização parcial).
func (s *Service) UpdateWarehouse(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	s.logger.Debug("Iniciando atualização de armazém no serviço.", map[string]interface{}{"id": warehouse.ID, "name": warehouse.Name})

	if _, err := uuid.Parse(warehouse.ID); err != nil {
		return domain.Warehouse{}, apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para UpdateWarehouse", nil)
	}

	// Busca o registro atual para preservar campos omitidos
	existing, err := s.repo.GetWarehouseByID(ctxGo, warehouse.ID)
	if err != nil {
		return domain.Warehouse{}, err // NotFoundError ou DBError
	}

	if strings.TrimSpace(warehouse.Name) == "" {
		warehouse.Name = existing.Name
	}
	if strings.TrimSpace(warehouse.Location) == "" {
		warehouse.Location = existing.Location
	}
	if err := s.validateWarehouseName(warehouse.Name); err != nil {
		return domain.Warehouse{}, err
	}

	updatedWarehouse, err := s.repo.UpdateWarehouse(ctxGo, warehouse)
	if err != nil {
		s.logger.Error("Falha ao atualizar armazém no repositório.", err)
		return domain.Warehouse{}, err // ConflictError, NotFoundError ou DBError
	}

	s.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": updatedWarehouse.ID, "name": updatedWarehouse.Name})
	return updatedWarehouse, nil
}

// DeleteWarehouse remove um armazém.
func (s *Service) DeleteWarehouse(ctx domain.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para DeleteWarehouse", nil)
	}

	if err := s.repo.DeleteWarehouse(ctxGo, id); err != nil {
		s.logger.Error("Falha ao deletar armazém no repositório.", err)
		return err // Erros do repositório já são NotFoundError ou DBError
	}

	s.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// GetWarehouseQuantities retorna a quantidade total de itens por armazém.
func (s *Service) GetWarehouseQuantities(ctx domain.Context) ([]domain.WarehouseQuantity, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para GetWarehouseQuantities", nil)
	}

	totals, err := s.stats.WarehouseQuantities(ctxGo)
	if err != nil {
		s.logger.Error("Falha ao buscar agregados por armazém no repositório.", err)
		return nil, err
	}

	return totals, nil
}

// validateWarehouseName é uma função auxiliar para validar o nome do armazém.
func (s *Service) validateWarehouseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.NewValidationError("O nome do armazém não pode ser vazio.")
	}
	if len(name) < 3 || len(name) > 100 {
		return apperror.NewValidationError("O nome do armazém deve ter entre 3 e 100 caracteres.")
	}
	return nil
}
