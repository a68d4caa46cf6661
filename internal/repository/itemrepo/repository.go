package itemrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockcast/internal/domain"
	"stockcast/internal/errors"
	"stockcast/internal/pkg/cache"
	"stockcast/internal/pkg/logger"
)

// Chaves de cache usadas pela estratégia Cache-Aside.
const (
	itemCacheKey       = "item:%s"
	warehouseTotalsKey = "warehouse-quantities"
	itemCacheTTL       = 5 * time.Minute
	warehouseTotalsTTL = 1 * time.Minute
)

// ItemRepository implementa o acesso a dados do catálogo de itens.
// Ele contém as conexões necessárias (PostgreSQL e Redis) e é o único
// escritor dos campos quantity/warehouse via Transfer.
type ItemRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewItemRepository cria e retorna uma nova instância do Repositório de Itens.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewItemRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ItemRepository {
	return &ItemRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByID busca um item pelo ID, utilizando a estratégia Cache-Aside.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(itemCacheKey, id)
	var item domain.Item

	// --- 1. Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &item) == nil {
			return item, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos, mas continuamos.
		r.logger.Warn("Falha ao ler item do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	query := `
        SELECT id, name, quantity, low_stock_threshold, warehouse, created_at, updated_at
        FROM items
        WHERE id = $1`

	err = r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&item.ID, &item.Name, &item.Quantity, &item.LowStockThreshold,
		&item.Warehouse, &item.CreatedAt, &item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Item{}, errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe no catálogo.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar item no DB.", err)
		return domain.Item{}, errors.NewDBError("Falha ao buscar item", err)
	}

	// --- 3. Estratégia Cache-Aside (WRITE) ---
	if itemJSON, marshalErr := json.Marshal(item); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, itemJSON, itemCacheTTL)
	}

	return item, nil
}

// FindAll lista os itens do catálogo, com filtro opcional por armazém.
func (r *ItemRepository) FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, quantity, low_stock_threshold, warehouse, created_at, updated_at
        FROM items`
	args := []interface{}{}

	if filter.Warehouse != "" {
		query += ` WHERE warehouse = $1`
		args = append(args, filter.Warehouse)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar itens no DB.", err)
		return nil, errors.NewDBError("Falha ao listar itens", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Quantity, &item.LowStockThreshold,
			&item.Warehouse, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, errors.NewDBError("Falha ao mapear item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens", err)
	}

	return items, nil
}

// Save insere um novo item no catálogo.
func (r *ItemRepository) Save(ctx context.Context, item domain.Item) (domain.Item, error) {
	r.logger.Debug("Iniciando Save de item no repositório.", map[string]interface{}{"name": item.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
        INSERT INTO items (id, name, quantity, low_stock_threshold, warehouse, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		item.ID, item.Name, item.Quantity, item.LowStockThreshold,
		item.Warehouse, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir item no DB.", err)
		return domain.Item{}, errors.NewDBError("Falha ao criar item", err)
	}

	// Os agregados por armazém mudaram
	r.Cache.Delete(ctxTimeout, warehouseTotalsKey)

	return item, nil
}

// Update atualiza um item existente.
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	item.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE items
        SET name = $1, quantity = $2, low_stock_threshold = $3, warehouse = $4, updated_at = $5
        WHERE id = $6`

	result, err := r.DB.ExecContext(ctxTimeout, query,
		item.Name, item.Quantity, item.LowStockThreshold, item.Warehouse, item.UpdatedAt, item.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar item no DB.", err)
		return domain.Item{}, errors.NewDBError("Falha ao atualizar item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Item{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Item{}, errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe no catálogo.", item.ID))
	}

	// Invalidação explícita: o item e os agregados ficaram obsoletos
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, item.ID), warehouseTotalsKey)

	return item, nil
}

// Delete remove um item do catálogo.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar item no DB.", err)
		return errors.NewDBError("Falha ao deletar item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe no catálogo.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, id), warehouseTotalsKey)
	return nil
}

// FindLowStock retorna os itens com quantidade menor ou igual ao limite de
// estoque baixo, em todo o catálogo, independente de armazém.
func (r *ItemRepository) FindLowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, quantity, low_stock_threshold
        FROM items
        WHERE quantity <= low_stock_threshold
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao buscar itens com estoque baixo no DB.", err)
		return nil, errors.NewDBError("Falha ao buscar itens com estoque baixo", err)
	}
	defer rows.Close()

	items := []domain.LowStockItem{}
	for rows.Next() {
		var item domain.LowStockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.LowStockThreshold); err != nil {
			return nil, errors.NewDBError("Falha ao mapear item de estoque baixo", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens de estoque baixo", err)
	}

	return items, nil
}

// WarehouseQuantities agrega a quantidade total de itens por armazém,
// ordenado pelo nome do armazém, utilizando a estratégia Cache-Aside.
func (r *ItemRepository) WarehouseQuantities(ctx context.Context) ([]domain.WarehouseQuantity, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var totals []domain.WarehouseQuantity

	cachedData, err := r.Cache.Get(ctxTimeout, warehouseTotalsKey)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &totals) == nil {
			return totals, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler agregados do cache Redis.", map[string]interface{}{"key": warehouseTotalsKey, "error": err.Error()})
	}

	query := `
        SELECT warehouse, SUM(quantity) AS total_quantity
        FROM items
        GROUP BY warehouse
        ORDER BY warehouse`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao agregar quantidades por armazém no DB.", err)
		return nil, errors.NewDBError("Falha ao agregar quantidades por armazém", err)
	}
	defer rows.Close()

	totals = []domain.WarehouseQuantity{}
	for rows.Next() {
		var wq domain.WarehouseQuantity
		if err := rows.Scan(&wq.Warehouse, &wq.TotalQuantity); err != nil {
			return nil, errors.NewDBError("Falha ao mapear agregado por armazém", err)
		}
		totals = append(totals, wq)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar agregados por armazém", err)
	}

	if totalsJSON, marshalErr := json.Marshal(totals); marshalErr == nil {
		r.Cache.Set(ctxTimeout, warehouseTotalsKey, totalsJSON, warehouseTotalsTTL)
	}

	return totals, nil
}

// Transfer aplica uma transferência de estoque como uma unidade lógica única:
// verificação de quantidade, decremento, reatribuição de armazém e append do
// log acontecem na mesma transação. A linha do item é travada com FOR UPDATE,
// de modo que duas transferências concorrentes sobre o mesmo item nunca passam
// ambas na checagem contra uma leitura obsoleta.
//
// Pré-condições de formato (quantidade positiva, armazéns distintos) são
// verificadas na camada de Serviço, antes de qualquer acesso ao DB.
func (r *ItemRepository) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	r.logger.Debug("Iniciando transferência no repositório.", map[string]interface{}{
		"item_id": req.ItemID,
		"from":    req.FromWarehouse,
		"to":      req.ToWarehouse,
		"qty":     req.Quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de transferência.", err)
		return domain.TransferResult{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Travar a linha do item (FOR UPDATE) e ler o estado atual
	var (
		name      string
		quantity  int
		warehouse string
	)
	querySelect := `
        SELECT name, quantity, warehouse
        FROM items
        WHERE id = $1 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, querySelect, req.ItemID).Scan(&name, &quantity, &warehouse)
	if err == sql.ErrNoRows {
		return domain.TransferResult{}, errors.NewNotFoundError(fmt.Sprintf("Item com ID %s não existe no catálogo.", req.ItemID))
	}
	if err != nil {
		r.logger.Error("Falha ao travar item para transferência.", err)
		return domain.TransferResult{}, errors.NewDBError("Falha ao buscar item para transferência", err)
	}

	// 2. Política item-bound: a quantidade só sai do armazém que de fato
	//    registra o item.
	if warehouse != req.FromWarehouse {
		return domain.TransferResult{}, errors.NewConflictError(
			fmt.Sprintf("O item '%s' está registrado no armazém '%s', não em '%s'.", name, warehouse, req.FromWarehouse))
	}

	// 3. Verificação de quantidade (conservação + não-negatividade)
	if quantity < req.Quantity {
		return domain.TransferResult{}, errors.NewInsufficientStockError(
			fmt.Sprintf("O item '%s' possui %d unidades; transferência de %d excede o disponível.", name, quantity, req.Quantity))
	}

	// 4. Decremento + reatribuição de armazém (modelo de localização única)
	queryUpdate := `
        UPDATE items
        SET quantity = quantity - $1, warehouse = $2, updated_at = $3
        WHERE id = $4`

	if _, err = tx.ExecContext(ctxTimeout, queryUpdate, req.Quantity, req.ToWarehouse, time.Now().UTC(), req.ItemID); err != nil {
		r.logger.Error("Falha ao aplicar mutação de transferência.", err)
		return domain.TransferResult{}, errors.NewDBError("Falha ao aplicar transferência", err)
	}

	// 5. Append do log dentro da mesma transação: uma previsão nunca observa
	//    o log sem a quantidade atualizada, e vice-versa.
	qty := req.Quantity
	details := domain.LogDetails{
		Quantity:      &qty,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return domain.TransferResult{}, errors.NewInternalError("Falha ao serializar detalhes do log", err)
	}

	queryLog := `
        INSERT INTO logs (id, action, item_id, timestamp, details)
        VALUES ($1, $2, $3, $4, $5)`

	if _, err = tx.ExecContext(ctxTimeout, queryLog,
		uuid.New().String(), domain.ActionTransfer, req.ItemID, time.Now().UTC(), detailsJSON,
	); err != nil {
		r.logger.Error("Falha ao registrar log de transferência.", err)
		return domain.TransferResult{}, errors.NewDBError("Falha ao registrar log de transferência", err)
	}

	// 6. Commit
	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de transferência.", commitErr)
		return domain.TransferResult{}, errors.NewDBError("Falha ao commitar transação", commitErr)
	}

	// 7. Invalidação explícita dos agregados em cache (contrato de efeito
	//    colateral da transferência)
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, req.ItemID), warehouseTotalsKey)

	r.logger.Info("Transferência aplicada com sucesso.", map[string]interface{}{
		"item_id":      req.ItemID,
		"from":         req.FromWarehouse,
		"to":           req.ToWarehouse,
		"qty":          req.Quantity,
		"new_quantity": quantity - req.Quantity,
	})

	return domain.TransferResult{
		ItemID:        req.ItemID,
		ItemName:      name,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Quantity:      req.Quantity,
	}, nil
}
