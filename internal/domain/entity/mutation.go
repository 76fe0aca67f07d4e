package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de una mutación.
const (
	MutationDirectionIN  = "IN"  // ingreso al lote
	MutationDirectionOUT = "OUT" // salida del lote
)

// Método de selección de camadas.
const (
	MutationMethodFIFO   = "FIFO"   // camadas más antiguas primero
	MutationMethodManual = "MANUAL" // camadas y cantidades elegidas por el usuario
)

// Estados de una mutación y de sus líneas.
const (
	MutationStatusActive   = "ACTIVE"
	MutationStatusReversed = "REVERSED"
)

// Tipos (kind) habituales de mutación.
const (
	MutationKindInternal = "internal" // traslado entre galpones de la misma empresa
	MutationKindExternal = "external" // ingreso/salida hacia fuera de la empresa
)

// Mutation representa un traslado de aves desde (OUT) o hacia (IN) un lote.
// El destino puede ser un lote concreto, o solo un galpón sin lote nombrado
// (DestinationCoopID); DestinationBatchID referencia la camada espejo creada en el
// destino, necesaria para poder revertir el efecto completo.
type Mutation struct {
	ID                 string
	CompanyID          string
	FlockID            string // lote origen (OUT) o receptor (IN)
	DestinationFlockID *string
	DestinationCoopID  *string
	DestinationBatchID *string
	Date               time.Time
	Direction          string // IN | OUT
	Kind               string // internal | external | ...
	Reason             string
	Method             string // FIFO | MANUAL
	Status             string // ACTIVE | REVERSED
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Lines              []MutationLine
}

// TotalQuantity suma las cantidades de las líneas ACTIVE.
func (m *Mutation) TotalQuantity() int {
	total := 0
	for _, l := range m.Lines {
		if l.Status == MutationStatusActive {
			total += l.Quantity
		}
	}
	return total
}

// ValidDirection indica si d es una dirección reconocida.
func ValidDirection(d string) bool {
	return d == MutationDirectionIN || d == MutationDirectionOUT
}

// ValidMethod indica si m es un método reconocido.
func ValidMethod(m string) bool {
	return m == MutationMethodFIFO || m == MutationMethodManual
}

// MutationLine es el detalle por camada de una mutación. Quantity siempre > 0;
// Weight y Price son opcionales (kg y valor unitario del traslado).
type MutationLine struct {
	ID         string
	MutationID string
	BatchID    string
	Quantity   int
	Weight     *decimal.Decimal
	Price      *decimal.Decimal
	Note       string
	Status     string // ACTIVE | REVERSED
	CreatedAt  time.Time
}
