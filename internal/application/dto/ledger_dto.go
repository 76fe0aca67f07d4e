package dto

import "github.com/shopspring/decimal"

// DepletionRequest body para registrar bajas (mortalidad/descarte) de un lote,
// consumidas FIFO contra sus camadas.
type DepletionRequest struct {
	FlockID  string `json:"flock_id"`
	Quantity int    `json:"quantity"`
	Date     string `json:"date"`
	Reason   string `json:"reason,omitempty"`
}

// SalesRequest body para registrar una venta de aves de un lote (consumo FIFO).
type SalesRequest struct {
	FlockID   string           `json:"flock_id"`
	Quantity  int              `json:"quantity"`
	Date      string           `json:"date"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// LedgerResultResponse resultado de un registro de bajas o ventas.
type LedgerResultResponse struct {
	Success       bool             `json:"success"`
	TotalQuantity int              `json:"total_quantity"`
	BatchesUsed   int              `json:"batches_used"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"` // solo ventas con precio
}
