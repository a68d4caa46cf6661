package transfer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// TransferService define o contrato que o Handler espera do Motor de Transferência.
type TransferService interface {
	Transfer(ctx domain.Context, req domain.TransferRequest) (domain.TransferResult, error)
}

// Handler agrupa os métodos de Handler de transferências de estoque.
type Handler struct {
	Service TransferService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc TransferService, log logger.Logger) *Handler {
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

// TransferHandler lida com a requisição POST /v1/transfers.
// @Summary Transfere quantidade de um item entre armazéns
// @Description Valida e aplica uma transferência atômica; registra a ação no log de atividades.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body domain.TransferRequest true "Dados da transferência"
// @Success 200 {object} domain.TransferResult "Transferência aplicada"
// @Failure 400 {object} domain.ErrorResponse "Quantidade inválida"
// @Failure 404 {object} domain.ErrorResponse "Item não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Conflito (mesmo armazém) ou estoque insuficiente"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /transfers [post]
func (h *Handler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Transfer(ctx, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusOK)
}
