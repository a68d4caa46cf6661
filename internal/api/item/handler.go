package item

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// ItemService define o contrato que o Handler espera da camada de Serviço.
type ItemService interface {
	CreateItem(ctx domain.Context, item domain.Item) (domain.Item, error)
	GetItemByID(ctx domain.Context, id string) (domain.Item, error)
	ListItems(ctx domain.Context, filter domain.ItemFilter) ([]domain.Item, error)
	UpdateItem(ctx domain.Context, item domain.Item) (domain.Item, error)
	DeleteItem(ctx domain.Context, id string) error
	CreateLog(ctx domain.Context, entry domain.LogEntry) (domain.LogEntry, error)
}

// AlertService define o contrato da varredura de estoque baixo.
type AlertService interface {
	ScanLowStock(ctx context.Context) ([]domain.LowStockItem, error)
}

// Handler agrupa todos os métodos de Handler do catálogo de itens.
type Handler struct {
	Service ItemService
	Alerts  AlertService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Serviços e o Logger.
func NewHandler(svc ItemService, alerts AlertService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Alerts:  alerts,
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

// ItemsHandler lida com as requisições GET e POST em /v1/items.
// @Summary Lista ou cria itens do catálogo
// @Description GET lista os itens (filtro opcional ?warehouse=Nome); POST cria um novo item.
// @Tags items
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /items [get]
func (h *Handler) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		filter := domain.ItemFilter{Warehouse: r.URL.Query().Get("warehouse")}
		items, err := h.Service.ListItems(ctx, filter)
		h.handleServiceResponse(w, r, items, err, http.StatusOK)

	case http.MethodPost:
		var item domain.Item
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		created, err := h.Service.CreateItem(ctx, item)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemByIDHandler lida com GET/PUT/DELETE em /v1/items/{id}.
// @Summary Busca, atualiza ou remove um item por ID
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "ID do Item"
// @Security ApiKeyAuth
// @Router /items/{id} [get]
func (h *Handler) ItemByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimPrefix(r.URL.Path, "/v1/items/") // Assumes URL path like /v1/items/{id}

	switch r.Method {
	case http.MethodGet:
		item, err := h.Service.GetItemByID(ctx, id)
		h.handleServiceResponse(w, r, item, err, http.StatusOK)

	case http.MethodPut:
		var item domain.Item
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
			return
		}
		item.ID = id // O ID do path prevalece
		updated, err := h.Service.UpdateItem(ctx, item)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteItem(ctx, id)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// LowStockHandler lida com a requisição GET /v1/items/low-stock.
// @Summary Lista itens com estoque baixo
// @Description Retorna os itens com quantidade menor ou igual ao limite configurado.
// @Tags items
// @Produce json
// @Success 200 {array} domain.LowStockItem "Itens críticos"
// @Security ApiKeyAuth
// @Router /items/low-stock [get]
func (h *Handler) LowStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	items, err := h.Alerts.ScanLowStock(ctx)
	h.handleServiceResponse(w, r, items, err, http.StatusOK)
}

// CreateLogHandler lida com a requisição POST /v1/logs.
// @Summary Registra manualmente uma entrada no log de atividades
// @Tags logs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /logs [post]
func (h *Handler) CreateLogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var entry domain.LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateLog(ctx, entry)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}
