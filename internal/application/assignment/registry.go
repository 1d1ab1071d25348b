package assignment

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// OwnerRegistryUseCase superficie de lectura y administración del registro de
// asesores. Los mutadores de carga (ReserveSlot/ReleaseSlot) NO se exponen aquí:
// solo el motor de asignación los invoca, dentro de su sección crítica.
type OwnerRegistryUseCase struct {
	ownerRepo repository.OwnerRepository
}

// NewOwnerRegistryUseCase construye el caso de uso con el puerto de persistencia.
func NewOwnerRegistryUseCase(ownerRepo repository.OwnerRepository) *OwnerRegistryUseCase {
	return &OwnerRegistryUseCase{ownerRepo: ownerRepo}
}

// CreateOwner da de alta un asesor con carga cero.
func (uc *OwnerRegistryUseCase) CreateOwner(in dto.CreateOwnerRequest) (*dto.OwnerResponse, error) {
	if in.Name == "" || in.Capacity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	owner := &entity.Owner{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Capacity:  in.Capacity,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ownerRepo.Create(owner); err != nil {
		return nil, err
	}
	return toOwnerResponse(owner), nil
}

// GetLoad devuelve carga actual, capacidad y disponibilidad de un asesor.
// Lectura sin coordinación: el valor puede cambiar al instante siguiente.
func (uc *OwnerRegistryUseCase) GetLoad(ownerID string) (*dto.LoadResponse, error) {
	owner, err := uc.ownerRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.LoadResponse{
		OwnerID:     owner.ID,
		CurrentLoad: owner.CurrentLoad,
		Capacity:    owner.Capacity,
		Available:   owner.Available,
		Frozen:      owner.Frozen,
	}, nil
}

// ListAvailable devuelve los asesores disponibles, carga ascendente.
func (uc *OwnerRegistryUseCase) ListAvailable() ([]dto.OwnerResponse, error) {
	owners, err := uc.ownerRepo.ListAvailable()
	if err != nil {
		return nil, err
	}
	return toOwnerResponses(owners), nil
}

// List devuelve todos los asesores paginados (incluye no disponibles y congelados).
func (uc *OwnerRegistryUseCase) List(limit, offset int) ([]dto.OwnerResponse, error) {
	owners, err := uc.ownerRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	return toOwnerResponses(owners), nil
}

// SetAvailability prende o apaga la disponibilidad del asesor (no toca su carga).
func (uc *OwnerRegistryUseCase) SetAvailability(ownerID string, available bool) error {
	owner, err := uc.ownerRepo.GetByID(ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return domain.ErrNotFound
	}
	return uc.ownerRepo.SetAvailability(ownerID, available)
}

func toOwnerResponse(o *entity.Owner) *dto.OwnerResponse {
	return &dto.OwnerResponse{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		Capacity:    o.Capacity,
		CurrentLoad: o.CurrentLoad,
		Available:   o.Available,
		Frozen:      o.Frozen,
		CreatedAt:   o.CreatedAt,
	}
}

func toOwnerResponses(owners []*entity.Owner) []dto.OwnerResponse {
	out := make([]dto.OwnerResponse, 0, len(owners))
	for _, o := range owners {
		out = append(out, *toOwnerResponse(o))
	}
	return out
}
