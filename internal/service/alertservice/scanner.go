package alertservice

import (
	"context"
	"sync"
	"time"

	"stockcast/internal/domain"
	"stockcast/internal/pkg/logger"
)

// Notifier é o colaborador que recebe a lista de itens críticos de cada
// varredura (e-mail, webhook, etc.). O scanner apenas entrega a lista.
type Notifier interface {
	NotifyLowStock(ctx context.Context, items []domain.LowStockItem) error
}

// LogNotifier é a implementação padrão de Notifier: apenas registra os
// itens críticos no log estruturado.
type LogNotifier struct {
	Logger logger.Logger
}

// NotifyLowStock registra cada item crítico encontrado pela varredura.
func (n *LogNotifier) NotifyLowStock(_ context.Context, items []domain.LowStockItem) error {
	for _, item := range items {
		n.Logger.Warn("Item com estoque baixo.", map[string]interface{}{
			"item_id":   item.ID,
			"item":      item.Name,
			"quantity":  item.Quantity,
			"threshold": item.LowStockThreshold,
		})
	}
	return nil
}

// Scanner executa a varredura de estoque baixo em intervalo fixo, com ciclo
// de vida explícito de Start/Stop (sem handle de intervalo global).
type Scanner struct {
	svc      *Service
	notifier Notifier
	interval time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScanner cria um Scanner parado. Chame Start para iniciar a varredura.
func NewScanner(svc *Service, notifier Notifier, interval time.Duration, logger logger.Logger) *Scanner {
	return &Scanner{
		svc:      svc,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Start inicia a varredura periódica em uma goroutine própria.
// Chamadas repetidas enquanto o scanner está rodando são no-ops.
func (s *Scanner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Scanner de estoque baixo já está em execução.", nil)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(runCtx)
	s.logger.Info("Scanner de estoque baixo iniciado.", map[string]interface{}{"interval": s.interval.String()})
}

// Stop encerra a varredura e aguarda a goroutine terminar.
// Chamadas repetidas com o scanner parado são no-ops.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Scanner de estoque baixo encerrado.", nil)
}

// run é o laço da varredura: uma passada imediata e depois uma por tick.
func (s *Scanner) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep executa uma varredura e entrega o resultado ao Notifier.
// Falhas são registradas e não interrompem o laço.
func (s *Scanner) sweep(ctx context.Context) {
	items, err := s.svc.ScanLowStock(ctx)
	if err != nil {
		return // O serviço já registrou a falha
	}
	if len(items) == 0 {
		return
	}
	if err := s.notifier.NotifyLowStock(ctx, items); err != nil {
		s.logger.Error("Falha ao notificar itens de estoque baixo.", err)
	}
}
