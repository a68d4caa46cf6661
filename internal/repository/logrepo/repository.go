package logrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stockcast/internal/domain"
	"stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// LogRepository implementa o acesso ao log de atividades (append-only).
// Registros nunca são atualizados nem removidos depois de escritos.
type LogRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewLogRepository cria e retorna uma nova instância do Repositório de Logs.
func NewLogRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *LogRepository {
	return &LogRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Append insere um novo registro no log de atividades.
func (r *LogRepository) Append(ctx context.Context, entry domain.LogEntry) (domain.LogEntry, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return domain.LogEntry{}, errors.NewInternalError("Falha ao serializar detalhes do log", err)
	}

	query := `
        INSERT INTO logs (id, action, item_id, timestamp, details)
        VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.DB.ExecContext(ctxTimeout, query,
		entry.ID, entry.Action, entry.ItemID, entry.Timestamp, detailsJSON,
	); err != nil {
		r.logger.Error("Falha ao inserir registro de log no DB.", err)
		return domain.LogEntry{}, errors.NewDBError("Falha ao registrar log", err)
	}

	return entry, nil
}

// Query retorna os registros do log que satisfazem o filtro.
// A janela temporal é inclusiva nas duas pontas: timestamp >= From e <= To.
func (r *LogRepository) Query(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, action, item_id, timestamp, details
        FROM logs
        WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", argPos)
		args = append(args, filter.ItemID)
		argPos++
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		query += fmt.Sprintf(" AND action = ANY($%d)", argPos)
		args = append(args, pq.Array(actions))
		argPos++
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND timestamp >= $%d", argPos)
		args = append(args, filter.From)
		argPos++
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND timestamp <= $%d", argPos)
		args = append(args, filter.To)
		argPos++
	}
	query += " ORDER BY timestamp"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao consultar log de atividades no DB.", err)
		return nil, errors.NewDBError("Falha ao consultar log de atividades", err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		var (
			entry       domain.LogEntry
			detailsJSON []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.ItemID, &entry.Timestamp, &detailsJSON); err != nil {
			return nil, errors.NewDBError("Falha ao mapear registro de log", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				r.logger.Warn("Registro de log com payload de detalhes inválido.", map[string]interface{}{"log_id": entry.ID})
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar registros de log", err)
	}

	return entries, nil
}
