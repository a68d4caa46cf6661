package alertservice_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
	"stockcast/internal/service/alertservice"
)

// MockLowStockRepository é uma implementação mock da interface LowStockRepository
type MockLowStockRepository struct {
	mock.Mock
}

func (m *MockLowStockRepository) FindLowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.LowStockItem), args.Error(1)
}

// recordingNotifier acumula as notificações recebidas, para asserção.
type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]domain.LowStockItem
}

func (n *recordingNotifier) NotifyLowStock(_ context.Context, items []domain.LowStockItem) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, items)
	return nil
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// Helper function to create a basic logger
func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

func TestScanLowStock_Success(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	expected := []domain.LowStockItem{
		{ID: "i1", Name: "Parafuso M8", Quantity: 3, LowStockThreshold: 10},
		{ID: "i2", Name: "Porca M8", Quantity: 10, LowStockThreshold: 10}, // igual ao limite também é crítico
	}

	mockRepo.On("FindLowStock", mock.Anything).Return(expected, nil)

	ctx := context.Background()
	items, err := svc.ScanLowStock(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expected, items)
	mockRepo.AssertExpectations(t)
}

func TestScanLowStock_Empty(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("FindLowStock", mock.Anything).Return([]domain.LowStockItem{}, nil)

	ctx := context.Background()
	items, err := svc.ScanLowStock(ctx)

	assert.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestScanLowStock_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	repoError := apperror.NewDBError("Falha ao varrer itens críticos", assert.AnError)
	mockRepo.On("FindLowStock", mock.Anything).Return([]domain.LowStockItem{}, repoError)

	ctx := context.Background()
	_, err := svc.ScanLowStock(ctx)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestScanner_RunsImmediateSweepAndNotifies(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	critical := []domain.LowStockItem{{ID: "i1", Name: "Parafuso M8", Quantity: 2, LowStockThreshold: 5}}
	mockRepo.On("FindLowStock", mock.Anything).Return(critical, nil)

	notifier := &recordingNotifier{}
	scanner := alertservice.NewScanner(svc, notifier, time.Hour, newTestLogger())

	scanner.Start(context.Background())
	defer scanner.Stop()

	// A primeira varredura é imediata, antes do primeiro tick
	assert.Eventually(t, func() bool {
		return notifier.callCount() >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestScanner_StopHaltsSweeps(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("FindLowStock", mock.Anything).Return([]domain.LowStockItem{}, nil)

	notifier := &recordingNotifier{}
	scanner := alertservice.NewScanner(svc, notifier, 20*time.Millisecond, newTestLogger())

	scanner.Start(context.Background())
	scanner.Stop()

	// Stop aguarda a goroutine terminar; nenhuma varredura pode acontecer depois
	calls := len(mockRepo.Calls)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, len(mockRepo.Calls))
}

func TestScanner_StartTwiceIsNoOp(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("FindLowStock", mock.Anything).Return([]domain.LowStockItem{}, nil)

	notifier := &recordingNotifier{}
	scanner := alertservice.NewScanner(svc, notifier, time.Hour, newTestLogger())

	scanner.Start(context.Background())
	scanner.Start(context.Background()) // segunda chamada não inicia outra goroutine
	scanner.Stop()

	// Stop em scanner parado também é um no-op seguro
	scanner.Stop()
}

func TestScanner_EmptySweepDoesNotNotify(t *testing.T) {
	mockRepo := new(MockLowStockRepository)
	svc := alertservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("FindLowStock", mock.Anything).Return([]domain.LowStockItem{}, nil)

	notifier := &recordingNotifier{}
	scanner := alertservice.NewScanner(svc, notifier, time.Hour, newTestLogger())

	scanner.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	scanner.Stop()

	assert.Equal(t, 0, notifier.callCount())
}
