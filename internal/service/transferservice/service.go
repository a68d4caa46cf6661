package transferservice

import (
	"context"
	"strings"

	"stockcast/internal/domain"
	apperror "stockcast/internal/errors"
	"stockcast/internal/pkg/logger"
)

// TransferRepository define o contrato que o Motor de Transferência espera da
// camada de Persistência. A implementação deve aplicar a verificação de
// quantidade, o decremento, a reatribuição de armazém e o append do log como
// uma unidade atômica única.
type TransferRepository interface {
	Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error)
}

// Service é o Motor de Transferência: valida e aplica movimentos de
// quantidade entre armazéns, preservando a quantidade total do item.
type Service struct {
	repo   TransferRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Motor de Transferência.
func NewService(repo TransferRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Transfer valida as pré-condições de formato e delega a mutação atômica ao
// repositório. Todas as falhas de regra de negócio são detectadas antes de
// qualquer mutação; nenhuma aplicação parcial fica visível.
//
// Erros possíveis: ValidationError (quantidade não positiva, campos vazios),
// ConflictError (origem igual ao destino, item fora do armazém de origem),
// NotFoundError (item inexistente), InsufficientStockError (quantidade
// excede o disponível).
func (s *Service) Transfer(ctx domain.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	s.logger.Debug("Iniciando transferência no serviço.", map[string]interface{}{
		"item_id": req.ItemID,
		"from":    req.FromWarehouse,
		"to":      req.ToWarehouse,
		"qty":     req.Quantity,
	})

	// 1. Validações de formato (antes de qualquer acesso ao DB)
	if strings.TrimSpace(req.ItemID) == "" {
		return domain.TransferResult{}, apperror.NewValidationError("O ID do item é obrigatório.")
	}
	if req.Quantity <= 0 {
		return domain.TransferResult{}, apperror.NewValidationError("A quantidade da transferência deve ser um inteiro positivo.")
	}
	from := strings.TrimSpace(req.FromWarehouse)
	to := strings.TrimSpace(req.ToWarehouse)
	if from == "" || to == "" {
		return domain.TransferResult{}, apperror.NewValidationError("Os armazéns de origem e destino são obrigatórios.")
	}

	// 2. Origem igual ao destino seria um no-op com entrada de log espúria
	if from == to {
		return domain.TransferResult{}, apperror.NewConflictError("O armazém de origem e o de destino são o mesmo.")
	}
	req.FromWarehouse = from
	req.ToWarehouse = to

	// 3. Casting e Configuração do Contexto (Converte domain.Context para context.Context)
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
		s.logger.Warn("Contexto de domínio inválido, usando context.Background() para Transfer", nil)
	}

	// 4. Mutação atômica (verificação + decremento + reatribuição + log)
	result, err := s.repo.Transfer(ctxGo, req)
	if err != nil {
		s.logger.Error("Falha ao aplicar transferência no repositório.", err)
		return domain.TransferResult{}, err // Erros do repositório já são tipados
	}

	s.logger.Info("Transferência concluída com sucesso.", map[string]interface{}{
		"item_id": result.ItemID,
		"item":    result.ItemName,
		"from":    result.FromWarehouse,
		"to":      result.ToWarehouse,
		"qty":     result.Quantity,
	})
	return result, nil
}
