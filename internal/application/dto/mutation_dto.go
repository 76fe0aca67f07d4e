package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MutationRequest body para POST /api/mutations (FIFO) y para el preview.
// Date en formato 2006-01-02; la comparación de duplicados es por día calendario.
type MutationRequest struct {
	FlockID            string           `json:"flock_id"`
	Quantity           int              `json:"quantity"`
	Date               string           `json:"date"`
	Direction          string           `json:"direction"` // IN | OUT
	Kind               string           `json:"kind"`      // internal | external
	Reason             string           `json:"reason,omitempty"`
	DestinationFlockID string           `json:"destination_flock_id,omitempty"`
	DestinationCoopID  string           `json:"destination_coop_id,omitempty"`
	EditMutationID     string           `json:"edit_mutation_id,omitempty"`
	Weight             *decimal.Decimal `json:"weight,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Note               string           `json:"note,omitempty"`
}

// ManualMutationRequest body para POST /api/mutations/manual: camadas y cantidades
// elegidas por el usuario en lugar del plan FIFO.
type ManualMutationRequest struct {
	MutationRequest
	Lines []ManualLineRequest `json:"lines"`
}

// ManualLineRequest línea explícita del modo manual.
type ManualLineRequest struct {
	BatchID  string           `json:"batch_id"`
	Quantity int              `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Note     string           `json:"note,omitempty"`
}

// AllocationPreviewResponse resultado del preview FIFO (sin efectos).
type AllocationPreviewResponse struct {
	CanFulfill   bool             `json:"can_fulfill"`
	Requested    int              `json:"requested"`
	Allocated    int              `json:"allocated"`
	Shortfall    int              `json:"shortfall"`
	BatchesCount int              `json:"batches_count"`
	Lines        []PreviewLineDTO `json:"lines"`
}

// PreviewLineDTO línea del plan en el preview.
type PreviewLineDTO struct {
	BatchID         string    `json:"batch_id"`
	StartDate       time.Time `json:"start_date"`
	Quantity        int       `json:"quantity"`
	AvailableBefore int       `json:"available_before"`
}

// MutationResultResponse resultado de aplicar (o editar) una mutación.
type MutationResultResponse struct {
	Success            bool   `json:"success"`
	MutationID         string `json:"mutation_id"`
	TotalQuantity      int    `json:"total_quantity"`
	BatchesUsed        int    `json:"batches_used"`
	Edited             bool   `json:"edited"`
	ReplacedMutationID string `json:"replaced_mutation_id,omitempty"`
}

// MutationDetailResponse detalle de una mutación con sus líneas.
type MutationDetailResponse struct {
	ID                 string              `json:"id"`
	FlockID            string              `json:"flock_id"`
	DestinationFlockID *string             `json:"destination_flock_id,omitempty"`
	DestinationCoopID  *string             `json:"destination_coop_id,omitempty"`
	Date               time.Time           `json:"date"`
	Direction          string              `json:"direction"`
	Kind               string              `json:"kind"`
	Reason             string              `json:"reason,omitempty"`
	Method             string              `json:"method"`
	Status             string              `json:"status"`
	TotalQuantity      int                 `json:"total_quantity"`
	Lines              []MutationLineDTO   `json:"lines"`
	CreatedAt          time.Time           `json:"created_at"`
}

// MutationLineDTO línea de una mutación en el detalle.
type MutationLineDTO struct {
	BatchID  string           `json:"batch_id"`
	Quantity int              `json:"quantity"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Note     string           `json:"note,omitempty"`
	Status   string           `json:"status"`
}

// AvailableBatchDTO proyección de camadas con disponibilidad (selector de UI).
type AvailableBatchDTO struct {
	BatchID           string    `json:"batch_id"`
	StartDate         time.Time `json:"start_date"`
	AvailableQuantity int       `json:"available_quantity"`
	AgeDays           int       `json:"age_days"`
}
