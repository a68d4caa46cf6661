package domain

// DaysUnknown é o sentinela retornado em DaysUntilLowStock quando não há
// sinal de demanda na janela e o estoque ainda não está crítico.
// Não é um erro: significa "não determinável".
const DaysUnknown = -1

// ForecastResult é o resultado derivado da previsão de demanda de um item.
// Nunca é persistido; é sempre recalculado a partir da janela do log e do
// estado atual do catálogo.
type ForecastResult struct {
	ItemID            string  `json:"item_id"`
	ItemName          string  `json:"item_name"`
	CurrentQuantity   int     `json:"current_quantity"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	WeeklyForecast    float64 `json:"weekly_forecast"`      // Sempre >= 0
	DaysUntilLowStock int     `json:"days_until_low_stock"` // >= 0, ou DaysUnknown (-1)
	IsOverstocked     bool    `json:"is_overstocked"`
	OverstockAmount   float64 `json:"overstock_amount"` // > 0 apenas quando IsOverstocked
	HasTransferData   bool    `json:"has_transfer_data"`
}
