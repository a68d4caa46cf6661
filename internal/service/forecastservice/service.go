package forecastservice

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// ItemReader define o acesso de leitura ao catálogo que o Motor de Previsão precisa.
type ItemReader interface {
	FindByID(ctx context.Context, id string) (domain.Item, error)
	FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
}

// LogReader define o acesso de leitura ao log de atividades.
type LogReader interface {
	Query(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error)
}

// Service é o Motor de Previsão de Demanda: varre uma janela do log por item
// e deriva taxa de demanda, dias até estoque baixo e flags de overstock.
// É uma operação de leitura pura, sem efeitos colaterais: segura para chamar
// concorrentemente; cada chamada revarre a janela (nenhum resultado é cacheado).
type Service struct {
	items             ItemReader
	logs              LogReader
	defaultWindowDays int
	logger            logger.Logger
}

// NewService cria e retorna uma nova instância do Motor de Previsão.
func NewService(items ItemReader, logs LogReader, defaultWindowDays int, logger logger.Logger) *Service {
	if defaultWindowDays < 1 {
		defaultWindowDays = 30
	}
	return &Service{
		items:             items,
		logs:              logs,
		defaultWindowDays: defaultWindowDays,
		logger:            logger,
	}
}

// DefaultWindowDays expõe a janela padrão configurada (usada pelo Handler).
func (s *Service) DefaultWindowDays() int {
	return s.defaultWindowDays
}

// Forecast calcula a previsão de demanda para um item específico (itemID
// preenchido) ou para o catálogo inteiro (itemID vazio).
//
// Um itemID que não resolve para nenhum item falha com NotFoundError; uma
// chamada de catálogo inteiro sobre um catálogo vazio retorna uma lista
// vazia (não é erro). windowDays < 1 falha com ValidationError.
func (s *Service) Forecast(ctx domain.Context, itemID string, windowDays int) ([]domain.ForecastResult, error) {
	if windowDays == 0 {
		windowDays = s.defaultWindowDays
	}
	if windowDays < 1 {
		return nil, apperror.NewValidationError("A janela da previsão (dias) deve ser um inteiro positivo.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para Forecast", nil)
	}

	// 1. Seleciona os itens
	var items []domain.Item
	if itemID != "" {
		item, err := s.items.FindByID(ctxGo, itemID)
		if err != nil {
			return nil, err // NotFoundError ou DBError, já tipados
		}
		items = []domain.Item{item}
	} else {
		all, err := s.items.FindAll(ctxGo, domain.ItemFilter{})
		if err != nil {
			return nil, err
		}
		items = all
	}

	// 2. Janela inclusiva: [now - windowDays, now]
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -windowDays)

	// 3. Varre a janela do log por item e deriva a previsão
	forecasts := make([]domain.ForecastResult, 0, len(items))
	for _, item := range items {
		logs, err := s.logs.Query(ctxGo, domain.LogFilter{
			ItemID:  item.ID,
			Actions: demandActions,
			From:    startDate,
			To:      endDate,
		})
		if err != nil {
			s.logger.Error("Falha ao consultar janela do log para previsão.", err)
			return nil, err
		}
		forecasts = append(forecasts, BuildForecast(item, logs, windowDays))
	}

	s.logger.Debug("Previsão calculada.", map[string]interface{}{
		"items":       len(forecasts),
		"window_days": windowDays,
	})
	return forecasts, nil
}

// csvHeader é o cabeçalho do export, na ordem fixa do contrato de serialização.
// O sentinela -1 é documentado no próprio cabeçalho.
var csvHeader = []string{
	"Item Name",
	"Current Quantity",
	"Low Stock Threshold",
	"Weekly Forecast",
	"Days Until Low Stock (-1=Unknown)",
	"Overstocked?",
	"Overstock Amount",
}

// ExportCSV calcula a previsão do catálogo inteiro e a escreve como CSV.
// O valor de overstock é emitido em ponto fixo com duas casas decimais.
func (s *Service) ExportCSV(ctx domain.Context, w io.Writer) error {
	forecasts, err := s.Forecast(ctx, "", s.defaultWindowDays)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return apperror.NewInternalError("Falha ao escrever cabeçalho do CSV", err)
	}

	for _, f := range forecasts {
		overstocked := "No"
		overstockAmount := "0"
		if f.IsOverstocked {
			overstocked = "Yes"
			overstockAmount = decimal.NewFromFloat(f.OverstockAmount).StringFixed(2)
		}

		record := []string{
			f.ItemName,
			strconv.Itoa(f.CurrentQuantity),
			strconv.Itoa(f.LowStockThreshold),
			strconv.FormatFloat(f.WeeklyForecast, 'f', -1, 64),
			strconv.Itoa(f.DaysUntilLowStock),
			overstocked,
			overstockAmount,
		}
		if err := writer.Write(record); err != nil {
			return apperror.NewInternalError("Falha ao escrever linha do CSV", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperror.NewInternalError("Falha ao finalizar o CSV", err)
	}
	return nil
}
