package router

import (
	"net/http"
	"time"

	"stockcast/internal/api/forecast"
	"stockcast/internal/api/item"
	"stockcast/internal/api/transfer"
	"stockcast/internal/api/user"
	"stockcast/internal/api/warehouse"
	"stockcast/internal/domain"
	"stockcast/internal/pkg/cache"
	"stockcast/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	itemHandler *item.Handler,
	transferHandler *transfer.Handler,
	forecastHandler *forecast.Handler,
	warehouseHandler *warehouse.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimit int,
	ratePeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento.
	// O padrão mais longo vence, então /v1/items/low-stock convive com /v1/items/.
	mux := http.NewServeMux()

	// Middlewares de rota
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas de Identidade (públicas) ---
	mux.HandleFunc("/v1/users/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/users/login", userHandler.LoginUserHandler)

	// --- 3. Rotas do Catálogo de Itens (v1) ---
	mux.HandleFunc("/v1/items", auth(itemHandler.ItemsHandler))
	mux.HandleFunc("/v1/items/", auth(itemHandler.ItemByIDHandler))
	mux.HandleFunc("/v1/items/low-stock", auth(itemHandler.LowStockHandler))
	mux.HandleFunc("/v1/logs", auth(itemHandler.CreateLogHandler))

	// --- 4. Rotas do Motor de Transferência (v1) ---
	mux.HandleFunc("/v1/transfers", auth(transferHandler.TransferHandler))

	// --- 5. Rotas do Motor de Previsão (v1) ---
	mux.HandleFunc("/v1/forecast", auth(forecastHandler.ForecastHandler))
	mux.HandleFunc("/v1/forecast/export", auth(forecastHandler.ExportHandler))

	// --- 6. Rotas do Registro de Armazéns (v1) ---
	// A administração de armazéns por ID (renomear, remover) é restrita a admins.
	mux.HandleFunc("/v1/warehouses", auth(warehouseHandler.WarehousesHandler))
	mux.HandleFunc("/v1/warehouses/", auth(adminOnly(warehouseHandler.WarehouseByIDHandler)))
	mux.HandleFunc("/v1/warehouses/quantities", auth(warehouseHandler.QuantitiesHandler))

	// --- 7. Middlewares Globais ---
	// O rate limiter envolve o mux inteiro (contagem por IP no Redis).
	limited := middleware.RateLimiter(cacheClient, rateLimit, ratePeriod)(mux)

	return limited
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
