package dto

import "time"

// CreateCoopRequest body para crear un galpón.
type CreateCoopRequest struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// CoopResponse salida de un galpón.
type CoopResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CoopListResponse listado paginado de galpones.
type CoopListResponse struct {
	Items []CoopResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
