package dto

import "time"

// CreateFlockRequest body para crear un lote; siembra su primera camada con la
// cantidad inicial y la fecha de ingreso.
type CreateFlockRequest struct {
	CoopID          string `json:"coop_id"`
	Name            string `json:"name"`
	StartDate       string `json:"start_date"` // 2006-01-02
	InitialQuantity int    `json:"initial_quantity"`
}

// FlockResponse salida de un lote.
type FlockResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	CoopID          string    `json:"coop_id"`
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	InitialQuantity int       `json:"initial_quantity"`
	CurrentQuantity int       `json:"current_quantity"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FlockListResponse listado paginado de lotes.
type FlockListResponse struct {
	Items []FlockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
