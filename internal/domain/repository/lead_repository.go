package repository

import (
	"time"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// LeadFilter criterios de listado de leads (cola de no asignados y listado general).
type LeadFilter struct {
	Status     string
	Channel    string
	CampaignID string
	OwnerID    string
	Unassigned bool
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// LeadRepository define el puerto de persistencia para Lead (DIP).
type LeadRepository interface {
	Create(lead *entity.Lead) error
	GetByID(id string) (*entity.Lead, error)
	// GetForUpdate bloquea la fila del lead (SELECT FOR UPDATE). Usar dentro de una tx.
	GetForUpdate(id string) (*entity.Lead, error)
	Update(lead *entity.Lead) error
	SetStatus(id, status string) error
	// SetOwner fija o limpia (nil) el asesor vigente del lead.
	SetOwner(leadID string, ownerID *string) error
	// SetFirstContact fija el primer contacto solo si aún no existe.
	SetFirstContact(leadID string, at time.Time) error
	// SetMergedInto marca el lead como retirado por fusión, con back-reference al superviviente.
	SetMergedInto(leadID, survivorID string) error
	List(filter LeadFilter) ([]*entity.Lead, error)
	// FindSimilar devuelve el corpus de candidatos a comparar contra el lead:
	// leads no fusionados que comparten dígitos de teléfono, email normalizado
	// o algún token del nombre. El score fino se calcula en dominio.
	FindSimilar(lead *entity.Lead) ([]*entity.Lead, error)
}
