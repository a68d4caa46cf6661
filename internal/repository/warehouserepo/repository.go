package warehouserepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stockcast/internal/domain"
	"stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// uniqueViolation é o código de erro do PostgreSQL para violação de
// constraint de unicidade (nome de armazém duplicado).
const uniqueViolation = "23505"

// WarehouseRepository implementa as operações de persistência do registro de armazéns.
type WarehouseRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewWarehouseRepository cria e retorna uma nova instância do Repositório de Armazéns.
func NewWarehouseRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *WarehouseRepository {
	return &WarehouseRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// isDuplicateName verifica se o erro do driver é uma violação de unicidade.
func isDuplicateName(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// CreateWarehouse insere um novo armazém no banco de dados.
// A unicidade do nome é garantida pelo índice único; violações são
// traduzidas para ConflictError.
func (r *WarehouseRepository) CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Iniciando CreateWarehouse no repositório.", map[string]interface{}{"name": warehouse.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if warehouse.ID == "" {
		warehouse.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now

	query := `
        INSERT INTO warehouses (id, name, location, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, name, location, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.CreatedAt, warehouse.UpdatedAt,
	).Scan(
		&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.CreatedAt, &warehouse.UpdatedAt,
	)
	if err != nil {
		if isDuplicateName(err) {
			return domain.Warehouse{}, errors.NewConflictError(fmt.Sprintf("Já existe um armazém com o nome '%s'.", warehouse.Name))
		}
		r.logger.Error("Falha ao inserir armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao criar armazém", err)
	}

	r.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": warehouse.ID, "name": warehouse.Name})
	return warehouse, nil
}

// GetWarehouseByID busca um armazém pelo ID.
func (r *WarehouseRepository) GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, location, created_at, updated_at
        FROM warehouses
        WHERE id = $1`

	var warehouse domain.Warehouse
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.CreatedAt, &warehouse.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao buscar armazém", err)
	}

	return warehouse, nil
}

// GetAllWarehouses lista todos os armazéns, ordenados pelo nome.
func (r *WarehouseRepository) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, location, created_at, updated_at
        FROM warehouses
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar armazéns no DB.", err)
		return nil, errors.NewDBError("Falha ao listar armazéns", err)
	}
	defer rows.Close()

	warehouses := []domain.Warehouse{}
	for rows.Next() {
		var warehouse domain.Warehouse
		if err := rows.Scan(
			&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.CreatedAt, &warehouse.UpdatedAt,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear armazém", err)
		}
		warehouses = append(warehouses, warehouse)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar armazéns", err)
	}

	return warehouses, nil
}

// UpdateWarehouse atualiza nome e localização de um armazém existente.
func (r *WarehouseRepository) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	warehouse.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE warehouses
        SET name = $1, location = $2, updated_at = $3
        WHERE id = $4
        RETURNING id, name, location, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		warehouse.Name, warehouse.Location, warehouse.UpdatedAt, warehouse.ID,
	).Scan(
		&warehouse.ID, &warehouse.Name, &warehouse.Location, &warehouse.CreatedAt, &warehouse.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não existe.", warehouse.ID))
	}
	if err != nil {
		if isDuplicateName(err) {
			return domain.Warehouse{}, errors.NewConflictError(fmt.Sprintf("Já existe um armazém com o nome '%s'.", warehouse.Name))
		}
		r.logger.Error("Falha ao atualizar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar armazém", err)
	}

	r.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": warehouse.ID, "name": warehouse.Name})
	return warehouse, nil
}

// DeleteWarehouse remove um armazém do registro.
func (r *WarehouseRepository) DeleteWarehouse(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar armazém no DB.", err)
		return errors.NewDBError("Falha ao deletar armazém", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não existe.", id))
	}

	r.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
