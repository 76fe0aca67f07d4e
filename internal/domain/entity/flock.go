package entity

import "time"

// Estados de un lote.
const (
	FlockStatusActive = "ACTIVE"
	FlockStatusClosed = "CLOSED"
)

// Flock representa un lote de aves alojado en un galpón. InitialQuantity se fija al
// crear el lote y no cambia; CurrentQuantity es el saldo vivo derivado, mantenido
// exclusivamente por el motor de mutaciones y el libro de bajas/ventas.
type Flock struct {
	ID              string
	CompanyID       string
	CoopID          string
	Name            string
	StartDate       time.Time
	InitialQuantity int
	CurrentQuantity int
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
