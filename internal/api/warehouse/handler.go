package warehouse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// WarehouseService define o contrato que o Handler espera da camada de Serviço.
type WarehouseService interface {
	CreateWarehouse(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetWarehouseByID(ctx domain.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx domain.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	DeleteWarehouse(ctx domain.Context, id string) error
	GetWarehouseQuantities(ctx domain.Context) ([]domain.WarehouseQuantity, error)
}

// Handler agrupa todos os métodos de Handler de armazéns.
type Handler struct {
	Service WarehouseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc WarehouseService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// WarehousesHandler lida com as requisições GET e POST em /v1/warehouses.
// @Summary Lista ou cria armazéns
// @Description GET retorna todos os armazéns cadastrados; POST cria um novo armazém.
// @Tags warehouses
// @Accept json
// @Produce json
// @Success 200 {array} domain.Warehouse "Lista de armazéns"
// @Success 201 {object} domain.Warehouse "Armazém criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Nome de armazém já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses [get]
func (h *Handler) WarehousesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		warehouses, err := h.Service.GetAllWarehouses(ctx)
		h.handleServiceResponse(w, r, warehouses, err, http.StatusOK)

	case http.MethodPost:
		var warehouse domain.Warehouse
		if err := json.NewDecoder(r.Body).Decode(&warehouse); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		createdWarehouse, err := h.Service.CreateWarehouse(ctx, warehouse)
		h.handleServiceResponse(w, r, createdWarehouse, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// WarehouseByIDHandler lida com GET/PUT/DELETE em /v1/warehouses/{id}.
// @Summary Busca, atualiza ou remove um armazém por ID
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Success 200 {object} domain.Warehouse "Armazém encontrado ou atualizado"
// @Success 204 "Nenhum conteúdo"
// @Failure 400 {object} domain.ErrorResponse "ID ou payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [get]
func (h *Handler) WarehouseByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimPrefix(r.URL.Path, "/v1/warehouses/") // Assumes URL path like /v1/warehouses/{id}

	switch r.Method {
	case http.MethodGet:
		warehouse, err := h.Service.GetWarehouseByID(ctx, id)
		h.handleServiceResponse(w, r, warehouse, err, http.StatusOK)

	case http.MethodPut:
		var warehouse domain.Warehouse
		if err := json.NewDecoder(r.Body).Decode(&warehouse); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		warehouse.ID = id // O ID do path prevalece
		updatedWarehouse, err := h.Service.UpdateWarehouse(ctx, warehouse)
		h.handleServiceResponse(w, r, updatedWarehouse, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteWarehouse(ctx, id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// QuantitiesHandler lida com a requisição GET /v1/warehouses/quantities.
// @Summary Agrega a quantidade total de itens por armazém
// @Tags warehouses
// @Produce json
// @Success 200 {array} domain.WarehouseQuantity "Totais por armazém"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouses/quantities [get]
func (h *Handler) QuantitiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	totals, err := h.Service.GetWarehouseQuantities(ctx)
	h.handleServiceResponse(w, r, totals, err, http.StatusOK)
}
