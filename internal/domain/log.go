package domain

import (
	"time"
)

// LogAction é um tipo string para as ações registradas no log de atividades.
type LogAction string

// Constantes para as ações de log (boas práticas)
const (
	ActionAdd      LogAction = "add"
	ActionUpdate   LogAction = "update"
	ActionDelete   LogAction = "delete"
	ActionTransfer LogAction = "transfer"
)

// IsValid verifica se a ação é uma das ações conhecidas do log.
func (a LogAction) IsValid() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionDelete, ActionTransfer:
		return true
	}
	return false
}

// LogDetails é o payload específico de cada ação.
// Para 'transfer' e 'update', o campo Quantity carrega o delta de quantidade:
// valores estritamente positivos representam saída de estoque (demanda);
// valores negativos ou zero (reposições, correções) são ignorados pela previsão.
type LogDetails struct {
	Quantity      *int   `json:"quantity,omitempty"`
	FromWarehouse string `json:"from_warehouse,omitempty"`
	ToWarehouse   string `json:"to_warehouse,omitempty"`
	Note          string `json:"note,omitempty"`
}

// LogEntry representa um registro imutável do log de atividades (append-only).
// Criado exclusivamente como efeito colateral de uma mutação do catálogo
// ou de uma transferência.
type LogEntry struct {
	ID        string     `json:"id"`
	Action    LogAction  `json:"action"`
	ItemID    string     `json:"item_id"`
	Timestamp time.Time  `json:"timestamp"`
	Details   LogDetails `json:"details"`
}

// LogFilter define os parâmetros da consulta de janela sobre o log.
// A janela é inclusiva nas duas pontas: [From, To].
type LogFilter struct {
	ItemID  string      // Vazio = todos os itens
	Actions []LogAction // Vazio = todas as ações
	From    time.Time
	To      time.Time
}
