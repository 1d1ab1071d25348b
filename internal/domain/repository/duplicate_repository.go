package repository

import (
	"time"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// DuplicateRepository define el puerto de persistencia para DuplicateCandidate.
type DuplicateRepository interface {
	Create(c *entity.DuplicateCandidate) error
	GetByID(id string) (*entity.DuplicateCandidate, error)
	// GetForUpdate bloquea la fila del candidato (SELECT FOR UPDATE). Usar dentro de una tx.
	GetForUpdate(id string) (*entity.DuplicateCandidate, error)
	// ListByLead devuelve los candidatos donde el lead participa por cualquiera
	// de los dos lados, score descendente.
	ListByLead(leadID string) ([]*entity.DuplicateCandidate, error)
	// ExistsPair responde si ya hay un candidato para el par (en cualquier orden).
	ExistsPair(leadA, leadB string) (bool, error)
	// Resolve fija resolución, usuario y momento. No valida estado previo: eso es del use case.
	Resolve(id, resolution, userID string, at time.Time) error
}
