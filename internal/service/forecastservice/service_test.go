package forecastservice_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
	"stockcast/internal/service/forecastservice"
)

// MockItemReader é uma implementação mock da interface ItemReader
type MockItemReader struct {
	mock.Mock
}

func (m *MockItemReader) FindByID(ctx context.Context, id string) (domain.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Item), args.Error(1)
}

func (m *MockItemReader) FindAll(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Item), args.Error(1)
}

// MockLogReader é uma implementação mock da interface LogReader
type MockLogReader struct {
	mock.Mock
}

func (m *MockLogReader) Query(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.LogEntry), args.Error(1)
}

// Helper function to create a basic logger
func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

func intPtr(v int) *int { return &v }

func TestForecast_SingleItem_Success(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	itemID := uuid.New().String()
	item := domain.Item{ID: itemID, Name: "Parafuso M8", Quantity: 100, LowStockThreshold: 10}
	logs := []domain.LogEntry{
		{Action: domain.ActionTransfer, ItemID: itemID, Details: domain.LogDetails{Quantity: intPtr(30)}},
	}

	mockItems.On("FindByID", mock.Anything, itemID).Return(item, nil)
	mockLogs.On("Query", mock.Anything, mock.MatchedBy(func(f domain.LogFilter) bool {
		return f.ItemID == itemID && len(f.Actions) == 2 && !f.From.IsZero() && !f.To.IsZero()
	})).Return(logs, nil)

	ctx := context.Background()
	forecasts, err := svc.Forecast(ctx, itemID, 30)

	assert.NoError(t, err)
	assert.Len(t, forecasts, 1)
	assert.Equal(t, itemID, forecasts[0].ItemID)
	assert.InDelta(t, 7.0, forecasts[0].WeeklyForecast, 1e-9)
	assert.True(t, forecasts[0].HasTransferData)
	mockItems.AssertExpectations(t)
	mockLogs.AssertExpectations(t)
}

func TestForecast_WholeCatalog_EmptyIsNotError(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	mockItems.On("FindAll", mock.Anything, domain.ItemFilter{}).Return([]domain.Item{}, nil)

	ctx := context.Background()
	forecasts, err := svc.Forecast(ctx, "", 0)

	assert.NoError(t, err)
	assert.NotNil(t, forecasts)
	assert.Len(t, forecasts, 0)
	mockLogs.AssertNotCalled(t, "Query")
}

func TestForecast_Fail_ItemNotFound(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	itemID := uuid.New().String()
	repoError := apperror.NewNotFoundError("Item não encontrado")

	mockItems.On("FindByID", mock.Anything, itemID).Return(domain.Item{}, repoError)

	ctx := context.Background()
	_, err := svc.Forecast(ctx, itemID, 30)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockLogs.AssertNotCalled(t, "Query")
}

func TestForecast_Fail_InvalidWindow(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	ctx := context.Background()
	_, err := svc.Forecast(ctx, "", -7)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockItems.AssertNotCalled(t, "FindAll")
}

func TestForecast_ZeroWindowUsesDefault(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 10, newTestLogger())

	itemID := uuid.New().String()
	item := domain.Item{ID: itemID, Name: "Porca M8", Quantity: 100, LowStockThreshold: 10}
	logs := []domain.LogEntry{
		{Action: domain.ActionUpdate, ItemID: itemID, Details: domain.LogDetails{Quantity: intPtr(70)}},
	}

	mockItems.On("FindByID", mock.Anything, itemID).Return(item, nil)
	mockLogs.On("Query", mock.Anything, mock.Anything).Return(logs, nil)

	ctx := context.Background()
	forecasts, err := svc.Forecast(ctx, itemID, 0)

	assert.NoError(t, err)
	assert.Len(t, forecasts, 1)
	// Janela padrão de 10 dias: média diária = 7, previsão semanal = 49
	assert.InDelta(t, 49.0, forecasts[0].WeeklyForecast, 1e-9)
}

func TestExportCSV_HeaderAndRows(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	itemA := domain.Item{ID: uuid.New().String(), Name: "Parafuso M8", Quantity: 100, LowStockThreshold: 10}
	itemB := domain.Item{ID: uuid.New().String(), Name: "Porca M8", Quantity: 5, LowStockThreshold: 10}

	mockItems.On("FindAll", mock.Anything, domain.ItemFilter{}).Return([]domain.Item{itemA, itemB}, nil)
	mockLogs.On("Query", mock.Anything, mock.MatchedBy(func(f domain.LogFilter) bool {
		return f.ItemID == itemA.ID
	})).Return([]domain.LogEntry{
		{Action: domain.ActionTransfer, ItemID: itemA.ID, Details: domain.LogDetails{Quantity: intPtr(30)}},
	}, nil)
	mockLogs.On("Query", mock.Anything, mock.MatchedBy(func(f domain.LogFilter) bool {
		return f.ItemID == itemB.ID
	})).Return([]domain.LogEntry{}, nil)

	var buf bytes.Buffer
	ctx := context.Background()
	err := svc.ExportCSV(ctx, &buf)

	assert.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3) // cabeçalho + 2 itens

	expectedHeader := []string{
		"Item Name",
		"Current Quantity",
		"Low Stock Threshold",
		"Weekly Forecast",
		"Days Until Low Stock (-1=Unknown)",
		"Overstocked?",
		"Overstock Amount",
	}
	assert.Equal(t, expectedHeader, records[0])

	// itemA: demanda 30 em 30 dias -> média diária 1, semanal 7,
	// dias até estoque baixo floor(90/1) = 90, overstock 100 - 21 = 79.00
	assert.Equal(t, []string{"Parafuso M8", "100", "10", "7", "90", "Yes", "79.00"}, records[1])

	// itemB: sem demanda e já crítico -> 0 dias, sem overstock
	assert.Equal(t, []string{"Porca M8", "5", "10", "0", "0", "No", "0"}, records[2])
}

func TestExportCSV_Fail_RepoError(t *testing.T) {
	mockItems := new(MockItemReader)
	mockLogs := new(MockLogReader)
	svc := forecastservice.NewService(mockItems, mockLogs, 30, newTestLogger())

	repoError := apperror.NewDBError("Falha ao buscar itens", assert.AnError)
	mockItems.On("FindAll", mock.Anything, domain.ItemFilter{}).Return([]domain.Item{}, repoError)

	var buf bytes.Buffer
	ctx := context.Background()
	err := svc.ExportCSV(ctx, &buf)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Equal(t, 0, buf.Len())
}
