package forecastservice

import (
	"math"

	"stockcast/internal/domain"
)

// demandActions são as ações do log consideradas pelo motor de previsão.
var demandActions = []domain.LogAction{domain.ActionTransfer, domain.ActionUpdate}

// BuildForecast deriva a previsão de um item a partir dos registros do log
// dentro da janela. É uma função pura: mesmo item + mesmos logs + mesma
// janela produzem sempre o mesmo resultado.
//
// Política numérica:
//   - Demanda = soma dos deltas de quantidade estritamente positivos
//     (reposições e correções, com delta negativo ou zero, ficam de fora).
//   - dailyAverage = demanda / windowDays; weeklyForecast = dailyAverage * 7.
//   - DaysUntilLowStock: sem demanda, 0 se já crítico, senão DaysUnknown (-1);
//     com demanda, floor((quantidade - limite) / dailyAverage), nunca negativo.
//   - Overstock: quantidade > 3x a previsão semanal E previsão semanal > 0.
//     Um item sem demanda medida nunca é marcado como overstock, por maior
//     que seja a quantidade (assimetria intencional com o ramo de estoque baixo).
func BuildForecast(item domain.Item, logs []domain.LogEntry, windowDays int) domain.ForecastResult {
	totalQuantity := 0
	hasTransferData := false
	for _, entry := range logs {
		if entry.Details.Quantity == nil {
			continue
		}
		if qty := *entry.Details.Quantity; qty > 0 {
			totalQuantity += qty
			hasTransferData = true
		}
	}

	dailyAverage := float64(totalQuantity) / float64(windowDays)
	weeklyForecast := dailyAverage * 7

	var daysUntilLowStock int
	if dailyAverage == 0 {
		// Sem sinal de demanda: 0 se já está em/abaixo do limite, senão
		// o sentinela "não determinável".
		if item.Quantity <= item.LowStockThreshold {
			daysUntilLowStock = 0
		} else {
			daysUntilLowStock = domain.DaysUnknown
		}
	} else {
		raw := float64(item.Quantity-item.LowStockThreshold) / dailyAverage
		if raw > 0 {
			daysUntilLowStock = int(math.Floor(raw))
		} else {
			daysUntilLowStock = 0 // Já em/abaixo do limite
		}
	}

	overstockThreshold := weeklyForecast * 3
	isOverstocked := float64(item.Quantity) > overstockThreshold && weeklyForecast > 0
	overstockAmount := 0.0
	if isOverstocked {
		overstockAmount = float64(item.Quantity) - overstockThreshold
	}

	return domain.ForecastResult{
		ItemID:            item.ID,
		ItemName:          item.Name,
		CurrentQuantity:   item.Quantity,
		LowStockThreshold: item.LowStockThreshold,
		WeeklyForecast:    weeklyForecast,
		DaysUntilLowStock: daysUntilLowStock,
		IsOverstocked:     isOverstocked,
		OverstockAmount:   overstockAmount,
		HasTransferData:   hasTransferData,
	}
}
