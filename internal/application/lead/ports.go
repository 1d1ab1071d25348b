package lead

import (
	"context"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// TxRunner ejecuta un callback dentro de una transacción de base de datos,
// con repositorios ligados a esa transacción. Lo implementa infraestructura.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
	) error) error
}

// OwnerSuggester recomienda un asesor para un lead sin comprometer cupo.
// Lo implementa el motor de asignación.
type OwnerSuggester interface {
	SuggestOwner(ctx context.Context, leadID string) (*dto.SuggestionResponse, error)
}
