package forecast

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// ForecastService define o contrato que o Handler espera do Motor de Previsão.
type ForecastService interface {
	Forecast(ctx domain.Context, itemID string, windowDays int) ([]domain.ForecastResult, error)
	ExportCSV(ctx domain.Context, w io.Writer) error
}

// Handler agrupa os métodos de Handler de previsão de demanda.
type Handler struct {
	Service ForecastService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ForecastService, log logger.Logger) *Handler {
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

// ForecastHandler lida com a requisição GET /v1/forecast.
// @Summary Calcula a previsão de demanda
// @Description Varre a janela do log (?days=N, padrão configurado) para um item (?itemId=) ou para o catálogo inteiro.
// @Tags forecast
// @Produce json
// @Param itemId query string false "ID do item (vazio = catálogo inteiro)"
// @Param days query int false "Janela da previsão em dias"
// @Success 200 {array} domain.ForecastResult "Previsões calculadas"
// @Failure 400 {object} domain.ErrorResponse "Janela inválida"
// @Failure 404 {object} domain.ErrorResponse "Item não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /forecast [get]
func (h *Handler) ForecastHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	itemID := r.URL.Query().Get("itemId")

	windowDays := 0 // 0 = usa a janela padrão do serviço
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'days' deve ser um inteiro."), http.StatusBadRequest)
			return
		}
		windowDays = days
	}

	forecasts, err := h.Service.Forecast(ctx, itemID, windowDays)
	h.handleServiceResponse(w, r, forecasts, err, http.StatusOK)
}

// ExportHandler lida com a requisição GET /v1/forecast/export.
// @Summary Exporta as previsões do catálogo como CSV
// @Tags forecast
// @Produce text/csv
// @Success 200 {string} string "CSV das previsões"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /forecast/export [get]
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="forecasts.csv"`)

	if err := h.Service.ExportCSV(ctx, w); err != nil {
		// O cabeçalho pode já ter sido escrito; registramos e encerramos
		h.Logger.Error("Falha ao exportar previsões em CSV.", err)
		status, _, message := apperror.MapToHTTPStatus(err)
		http.Error(w, message, status)
	}
}
