package entity

import "time"

// Estados de resolución de un candidato a duplicado.
const (
	DuplicatePending = "pending"
	DuplicateMerged  = "merged"
	DuplicateIgnored = "ignored"
)

// DuplicateCandidate relaciona dos leads que posiblemente son la misma persona.
// Score es un entero 0-100 calculado de forma determinista (ver routing.Score).
// Terminal una vez merged o ignored.
type DuplicateCandidate struct {
	ID          string
	LeadID      string // lead nuevo que disparó la detección
	DuplicateOf string // lead existente contra el que se comparó
	Score       int
	Resolution  string
	ResolvedBy  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// Resolved responde si el candidato ya fue resuelto (merge o ignore).
func (d *DuplicateCandidate) Resolved() bool {
	return d.Resolution != DuplicatePending
}
