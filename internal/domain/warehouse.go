package domain

import (
	"time"
)

// Warehouse representa um armazém físico ou lógico no sistema.
// O nome é único em todo o registro (invariante reforçado na criação e renomeação).
type Warehouse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"` // Localização descritiva, opcional
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
