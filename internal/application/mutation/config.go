package mutation

// Nombres de las políticas de restricción de ingreso. Se reportan tal cual en
// RestrictionViolationError.Policy para que la UI identifique cuál bloqueó.
const (
	PolicySameDayRepeatedInput       = "allow_same_day_repeated_input"
	PolicySameLivestockRepeatedInput = "allow_same_livestock_repeated_input"
	PolicySameLivestockSameDay       = "allow_same_livestock_same_day"
)

// EngineConfig agrupa la configuración del motor de mutaciones. Se pasa explícita al
// construir los servicios: el motor no lee estado global.
type EngineConfig struct {
	// Políticas de restricción: en false, rechazan mutaciones NUEVAS (no ediciones)
	// cuando ya existe una mutación ACTIVE con la coincidencia correspondiente.
	AllowSameDayRepeatedInput       bool // mismo día, cualquier lote
	AllowSameLivestockRepeatedInput bool // mismo lote, cualquier día
	AllowSameLivestockSameDay       bool // mismo lote y mismo día

	// HardDeleteOnReversal decide la retención al revertir: true elimina físicamente la
	// mutación; false la conserva marcada REVERSED (historial).
	HardDeleteOnReversal bool

	// CreateDestinationFlock: cuando una mutación OUT apunta solo a un galpón (sin lote
	// destino nombrado), true crea un lote nuevo en ese galpón; false aplica un efecto
	// solo-contadores sin destino rastreado.
	CreateDestinationFlock bool

	// MaxBatchAgeDays excluye de la asignación FIFO camadas más viejas que este límite
	// en días. 0 = sin límite.
	MaxBatchAgeDays int
}

// DefaultEngineConfig: políticas permisivas, retención con historial.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AllowSameDayRepeatedInput:       true,
		AllowSameLivestockRepeatedInput: true,
		AllowSameLivestockSameDay:       true,
		HardDeleteOnReversal:            false,
		CreateDestinationFlock:          false,
		MaxBatchAgeDays:                 0,
	}
}
