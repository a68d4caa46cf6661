package transferservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
	"stockcast/internal/service/transferservice"
)

// MockTransferRepository é uma implementação mock da interface TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.TransferResult), args.Error(1)
}

// Helper function to create a basic logger
func newTestLogger() logger.Logger {
	return logger.NewLogger("debug")
}

func TestTransfer_Success(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      10,
	}
	expected := domain.TransferResult{
		ItemID:        req.ItemID,
		ItemName:      "Parafuso M8",
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      10,
	}

	mockRepo.On("Transfer", mock.Anything, req).Return(expected, nil)

	ctx := context.Background()
	result, err := svc.Transfer(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockRepo.AssertExpectations(t)
}

func TestTransfer_TrimsWarehouseNames(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "  Central ",
		ToWarehouse:   " Norte  ",
		Quantity:      5,
	}
	// O repositório deve receber os nomes já normalizados
	normalized := req
	normalized.FromWarehouse = "Central"
	normalized.ToWarehouse = "Norte"

	mockRepo.On("Transfer", mock.Anything, normalized).Return(domain.TransferResult{}, nil)

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTransfer_Fail_MissingItemID(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      10,
	}

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "ID do item")
	mockRepo.AssertNotCalled(t, "Transfer")
}

func TestTransfer_Fail_ZeroQuantity(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      0,
	}

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "inteiro positivo")
	mockRepo.AssertNotCalled(t, "Transfer")
}

func TestTransfer_Fail_NegativeQuantity(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      -3,
	}

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Transfer")
}

func TestTransfer_Fail_MissingWarehouses(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:   uuid.New().String(),
		Quantity: 10,
	}

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "origem e destino")
	mockRepo.AssertNotCalled(t, "Transfer")
}

func TestTransfer_Fail_SameWarehouse(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Central",
		Quantity:      10,
	}

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "o mesmo")
	mockRepo.AssertNotCalled(t, "Transfer")
}

func TestTransfer_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      100,
	}
	repoError := apperror.NewInsufficientStockError("Quantidade solicitada (100) excede a disponível (40).")

	mockRepo.On("Transfer", mock.Anything, req).Return(domain.TransferResult{}, repoError)

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockRepo.AssertExpectations(t)
}

func TestTransfer_Fail_ItemNotFound(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Central",
		ToWarehouse:   "Norte",
		Quantity:      5,
	}
	repoError := apperror.NewNotFoundError("Item não encontrado")

	mockRepo.On("Transfer", mock.Anything, req).Return(domain.TransferResult{}, repoError)

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

func TestTransfer_Fail_ItemOutsideSourceWarehouse(t *testing.T) {
	mockRepo := new(MockTransferRepository)
	svc := transferservice.NewService(mockRepo, newTestLogger())

	req := domain.TransferRequest{
		ItemID:        uuid.New().String(),
		FromWarehouse: "Sul",
		ToWarehouse:   "Norte",
		Quantity:      5,
	}
	repoError := apperror.NewConflictError("O item não está no armazém de origem informado.")

	mockRepo.On("Transfer", mock.Anything, req).Return(domain.TransferResult{}, repoError)

	ctx := context.Background()
	_, err := svc.Transfer(ctx, req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}
