package entity

import "time"

// Orígenes de una asignación.
const (
	AssignmentOriginSuggested = "suggested"
	AssignmentOriginManual    = "manual"
	AssignmentOriginBulk      = "bulk"
	AssignmentOriginMerge     = "merge" // transferida desde un lead fusionado
)

// Assignment relaciona un lead con un asesor. El historial es append-only:
// reasignar marca la fila anterior como superseded, nunca se borra.
type Assignment struct {
	ID           string
	LeadID       string
	OwnerID      string
	Origin       string
	AssignedBy   string // user id del que ejecutó el comando
	AssignedAt   time.Time
	SupersededAt *time.Time
}

// Active responde si la asignación sigue vigente.
func (a *Assignment) Active() bool {
	return a.SupersededAt == nil
}

// ValidOrigin responde si el origen es uno de los conocidos.
func ValidOrigin(origin string) bool {
	switch origin {
	case AssignmentOriginSuggested, AssignmentOriginManual, AssignmentOriginBulk, AssignmentOriginMerge:
		return true
	}
	return false
}
