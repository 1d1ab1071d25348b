package repository

import (
	"time"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// AssignmentRepository define el puerto de persistencia para Assignment.
// El historial es append-only: nunca se borra una asignación.
type AssignmentRepository interface {
	Create(a *entity.Assignment) error
	// GetActiveByLead devuelve la asignación vigente del lead, o nil si no hay.
	GetActiveByLead(leadID string) (*entity.Assignment, error)
	// Supersede cierra una asignación vigente (fija superseded_at).
	Supersede(assignmentID string, at time.Time) error
	// HistoryByLead devuelve todas las asignaciones del lead, más reciente primero.
	HistoryByLead(leadID string) ([]*entity.Assignment, error)
	// TransferHistory reasigna el historial completo de un lead fusionado al superviviente.
	TransferHistory(fromLeadID, toLeadID string) error
}
