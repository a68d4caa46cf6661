package alertservice

import (
	"context"

	"stockcast/internal/domain"
	"stockcast/internal/pkg/logger"
)

// LowStockRepository define o acesso de leitura que a varredura precisa.
type LowStockRepository interface {
	FindLowStock(ctx context.Context) ([]domain.LowStockItem, error)
}

// Service é o scanner de alertas de estoque baixo: uma leitura pura do
// catálogo contra os limites por item, independente de armazém ou de janela
// de previsão.
type Service struct {
	repo   LowStockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de alertas.
func NewService(repo LowStockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ScanLowStock retorna os itens com quantidade menor ou igual ao limite de
// estoque baixo. O scanner não faz retry nem deduplicação: chamadores que
// queiram evitar spam de alertas devem dedupar entre varreduras sucessivas.
func (s *Service) ScanLowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	items, err := s.repo.FindLowStock(ctx)
	if err != nil {
		s.logger.Error("Falha na varredura de estoque baixo.", err)
		return nil, err
	}

	if len(items) > 0 {
		s.logger.Info("Varredura de estoque baixo encontrou itens críticos.", map[string]interface{}{"count": len(items)})
	}
	return items, nil
}
