package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"stockcast/config"
	"stockcast/internal/pkg/cache"
	"stockcast/internal/pkg/database"
	"stockcast/internal/pkg/logger"
	"stockcast/internal/pkg/token"

	// Camadas do motor para Injeção de Dependências
	"stockcast/internal/api/forecast"
	"stockcast/internal/api/item"
	"stockcast/internal/api/router"
	"stockcast/internal/api/transfer"
	"stockcast/internal/api/user"
	"stockcast/internal/api/warehouse"
	"stockcast/internal/repository/itemrepo"
	"stockcast/internal/repository/logrepo"
	"stockcast/internal/repository/userrepo"
	"stockcast/internal/repository/warehouserepo"
	"stockcast/internal/service/alertservice"
	"stockcast/internal/service/forecastservice"
	"stockcast/internal/service/itemservice"
	"stockcast/internal/service/transferservice"
	"stockcast/internal/service/userservice"
	"stockcast/internal/service/warehouseservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço StockCast...")
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos, mas continuamos,
		// pois as variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	itemRepo := itemrepo.NewItemRepository(db, cacheClient, cfg.DBTimeout, log)
	logRepo := logrepo.NewLogRepository(db, cfg.DBTimeout, log)
	warehouseRepo := warehouserepo.NewWarehouseRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// C. Serviços (Camada de Lógica de Negócio)
	itemSvc := itemservice.NewService(itemRepo, logRepo, log)
	transferSvc := transferservice.NewService(itemRepo, log)
	forecastSvc := forecastservice.NewService(itemRepo, logRepo, cfg.ForecastWindowDays, log)
	alertSvc := alertservice.NewService(itemRepo, log)
	warehouseSvc := warehouseservice.NewService(warehouseRepo, itemRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	// D. Scanner de Estoque Baixo (varredura periódica em background)
	scanner := alertservice.NewScanner(alertSvc, &alertservice.LogNotifier{Logger: log}, cfg.AlertScanInterval, log)
	scannerCtx, scannerCancel := context.WithCancel(context.Background())
	defer scannerCancel()
	scanner.Start(scannerCtx)

	// E. Handlers (Camada de Apresentação)
	itemHandler := item.NewHandler(itemSvc, alertSvc, log)
	transferHandler := transfer.NewHandler(transferSvc, log)
	forecastHandler := forecast.NewHandler(forecastSvc, log)
	warehouseHandler := warehouse.NewHandler(warehouseSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	// O roteador recebe os Handlers e aplica os middlewares (auth e rate limit)
	r := router.NewRouter(
		itemHandler,
		transferHandler,
		forecastHandler,
		warehouseHandler,
		userHandler,
		tokenSvc,
		cacheClient,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor StockCast ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou: %v", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Para o scanner antes do servidor, para não varrer durante o desligamento
	scanner.Stop()

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
