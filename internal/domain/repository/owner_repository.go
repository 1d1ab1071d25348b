package repository

import "github.com/drivelead/drivelead-api/internal/domain/entity"

// OwnerRepository define el puerto de persistencia para Owner (DIP).
// ReserveSlot y ReleaseSlot son los ÚNICOS mutadores de current_load:
// ambos son sentencias atómicas condicionadas en la DB (consistencia estricta
// para el control de cupo, ver registro de asesores).
type OwnerRepository interface {
	Create(owner *entity.Owner) error
	GetByID(id string) (*entity.Owner, error)
	// GetForUpdate bloquea la fila del asesor (SELECT FOR UPDATE). Usar dentro de una tx.
	GetForUpdate(id string) (*entity.Owner, error)
	Update(owner *entity.Owner) error
	List(limit, offset int) ([]*entity.Owner, error)
	// ListAvailable devuelve asesores disponibles y no congelados, carga ascendente.
	ListAvailable() ([]*entity.Owner, error)
	// ListByChannelAffinity devuelve asesores disponibles con historial de
	// asignaciones en el canal dado, carga ascendente.
	ListByChannelAffinity(channel string) ([]*entity.Owner, error)

	// ReserveSlot incrementa current_load. Sin override falla cerrado con
	// domain.ErrCapacityExceeded al llegar al tope; con override incrementa
	// igual y devuelve warning=true. Falla con domain.ErrOwnerUnavailable si
	// el asesor no está disponible o está congelado.
	ReserveSlot(id string, override bool) (warning bool, err error)
	// ReleaseSlot decrementa current_load. Un decremento que dejaría la carga
	// negativa congela al asesor y devuelve domain.ErrRegistryCorrupted.
	ReleaseSlot(id string) error
	// Freeze marca al asesor como congelado (invariante de carga roto).
	Freeze(id string) error
	SetAvailability(id string, available bool) error
}
