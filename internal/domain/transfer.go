package domain

// TransferRequest é o payload transiente de uma transferência de estoque.
// Não é persistido: em caso de sucesso produz um LogEntry e uma mutação
// no Item; em caso de falha não produz nada.
type TransferRequest struct {
	ItemID        string `json:"item_id"`
	FromWarehouse string `json:"from_warehouse"`
	ToWarehouse   string `json:"to_warehouse"`
	Quantity      int    `json:"quantity"` // Deve ser um inteiro estritamente positivo
}

// TransferResult é o retorno de uma transferência bem-sucedida.
type TransferResult struct {
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name"`
	FromWarehouse string `json:"from_warehouse"`
	ToWarehouse   string `json:"to_warehouse"`
	Quantity      int    `json:"quantity"`
}
