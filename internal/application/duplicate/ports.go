package duplicate

import (
	"context"

	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// TxRunner ejecuta el merge completo dentro de una transacción: las dos filas
// de lead quedan bloqueadas y el traspaso de historial es atómico.
type TxRunner interface {
	RunMerge(ctx context.Context, fn func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
		dupRepo repository.DuplicateRepository,
		actRepo repository.ActivityRepository,
	) error) error
}
