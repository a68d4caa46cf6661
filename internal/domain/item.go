package domain

import (
	"time"
)

// Item representa um item do catálogo de inventário (a Entidade central).
// O modelo é de localização única: cada item pertence a exatamente um armazém,
// referenciado pelo nome (campo Warehouse).
type Item struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Quantity          int       `json:"quantity"`            // Invariante: nunca negativo
	LowStockThreshold int       `json:"low_stock_threshold"` // Piso de quantidade; em/abaixo dele o item é crítico
	Warehouse         string    `json:"warehouse"`           // Referência por nome (não é ownership)
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ItemFilter define os parâmetros de busca de itens do catálogo.
type ItemFilter struct {
	Warehouse string // Filtra itens de um armazém específico (vazio = todos)
}

// LowStockItem é o subconjunto de campos de Item retornado pela varredura
// de estoque baixo (identidade + nome + quantidade + limite).
type LowStockItem struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// WarehouseQuantity é o agregado de quantidade total por armazém,
// consumido pelos gráficos e pelo painel de armazéns.
type WarehouseQuantity struct {
	Warehouse     string `json:"warehouse"`
	TotalQuantity int    `json:"total_quantity"`
}
