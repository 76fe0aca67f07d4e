package entity

import "time"

// Coop representa un galpón físico donde se aloja un lote de aves.
// Un galpón tiene a lo sumo un lote activo a la vez.
type Coop struct {
	ID        string
	CompanyID string
	Name      string
	Location  string
	Capacity  int // aves máximas; 0 = sin límite declarado
	CreatedAt time.Time
	UpdatedAt time.Time
}
