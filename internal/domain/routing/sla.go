package routing

import (
	"time"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// SLAState clasificación tri-estado del tiempo a primer contacto.
type SLAState string

const (
	SLAOnTrack  SLAState = "onTrack"
	SLAAtRisk   SLAState = "atRisk"
	SLABreached SLAState = "breached"
)

// SLATable horas objetivo de primer contacto por canal.
// Viene de configuración; no hay valores quemados en el motor.
type SLATable map[string]time.Duration

// defaultSLATarget aplica a canales sin entrada en la tabla.
const defaultSLATarget = 24 * time.Hour

// Target devuelve el objetivo SLA del canal.
func (t SLATable) Target(channel string) time.Duration {
	if d, ok := t[channel]; ok && d > 0 {
		return d
	}
	return defaultSLATarget
}

// Classify clasifica el SLA de un lead contra la tabla por canal:
//   - onTrack:  transcurrido < 50% del objetivo
//   - atRisk:   50% <= transcurrido < 100%
//   - breached: transcurrido >= 100%
//
// Si el lead ya tuvo primer contacto, el reloj queda congelado en ese instante.
// Función pura de (lead, now, tabla): segura para llamadas concurrentes.
func Classify(lead *entity.Lead, now time.Time, table SLATable) SLAState {
	elapsed := now.Sub(lead.CreatedAt)
	if lead.FirstContactAt != nil {
		elapsed = lead.FirstContactAt.Sub(lead.CreatedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	target := table.Target(lead.Channel)
	switch {
	case elapsed*2 < target:
		return SLAOnTrack
	case elapsed < target:
		return SLAAtRisk
	default:
		return SLABreached
	}
}
