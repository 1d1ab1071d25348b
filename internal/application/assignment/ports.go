package assignment

import (
	"context"

	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el swap de cupos:
// liberar el cupo del asesor anterior y reservar el del nuevo ocurre en una
// sola sección crítica, sin conteos transitorios visibles.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
	) error) error
}
