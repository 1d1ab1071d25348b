package assignment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/application/ports"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

// Motivos de sugerencia.
const (
	SuggestReasonAffinity = "channel_affinity"
	SuggestReasonLoad     = "load_balance"
)

// AssignmentUseCase motor de asignación: sugerencia heurística, asignación
// vinculante (single y bulk) y control de cupos contra el registro de asesores.
type AssignmentUseCase struct {
	txRunner  TxRunner
	leadRepo  repository.LeadRepository
	ownerRepo repository.OwnerRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewAssignmentUseCase construye el caso de uso.
func NewAssignmentUseCase(
	txRunner TxRunner,
	leadRepo repository.LeadRepository,
	ownerRepo repository.OwnerRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *AssignmentUseCase {
	return &AssignmentUseCase{
		txRunner:  txRunner,
		leadRepo:  leadRepo,
		ownerRepo: ownerRepo,
		publisher: publisher,
		log:       log,
	}
}

// AssignInput entrada para una asignación vinculante.
type AssignInput struct {
	LeadID     string
	OwnerID    string
	Origin     string // suggested | manual | bulk
	AssignedBy string // user id del que ejecuta el comando
	Override   bool
}

// SuggestOwner recomienda un asesor para el lead sin comprometer cupo:
// primero asesores con historial en el canal del lead (carga ascendente),
// después balanceo global por carga. Falla con ErrNoAvailableOwner si nadie
// tiene cupo. La lectura es eventual: el cupo real se verifica al asignar.
func (uc *AssignmentUseCase) SuggestOwner(ctx context.Context, leadID string) (*dto.SuggestionResponse, error) {
	lead, err := uc.leadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.Merged() {
		return nil, domain.ErrLeadMerged
	}

	affinity, err := uc.ownerRepo.ListByChannelAffinity(lead.Channel)
	if err != nil {
		return nil, err
	}
	if owner := firstAssignable(affinity); owner != nil {
		return &dto.SuggestionResponse{LeadID: leadID, OwnerID: owner.ID, Reason: SuggestReasonAffinity}, nil
	}

	available, err := uc.ownerRepo.ListAvailable()
	if err != nil {
		return nil, err
	}
	if owner := firstAssignable(available); owner != nil {
		return &dto.SuggestionResponse{LeadID: leadID, OwnerID: owner.ID, Reason: SuggestReasonLoad}, nil
	}
	return nil, domain.ErrNoAvailableOwner
}

func firstAssignable(owners []*entity.Owner) *entity.Owner {
	for _, o := range owners {
		if o.Assignable() {
			return o
		}
	}
	return nil
}

// Assign crea una asignación vinculante. Todo ocurre en UNA transacción:
// liberar el cupo del asesor anterior, reservar el del nuevo, cerrar la
// asignación previa y crear la nueva. Idempotente: reasignar al mismo asesor
// devuelve la asignación vigente sin tocar contadores.
// Un lead terminal (won/lost) no consume cupo: su slot se liberó al cerrar.
func (uc *AssignmentUseCase) Assign(ctx context.Context, in AssignInput) (*dto.AssignmentResponse, error) {
	if in.LeadID == "" || in.OwnerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Origin == "" {
		in.Origin = entity.AssignmentOriginManual
	}
	if !entity.ValidOrigin(in.Origin) {
		return nil, domain.ErrInvalidInput
	}

	var result *dto.AssignmentResponse
	var ev *ports.LeadAssignedEvent

	err := uc.txRunner.Run(ctx, func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
	) error {
		lead, err := leadRepo.GetForUpdate(in.LeadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return domain.ErrNotFound
		}
		if lead.Merged() {
			return domain.ErrLeadMerged
		}

		newOwner, err := ownerRepo.GetByID(in.OwnerID)
		if err != nil {
			return err
		}
		if newOwner == nil {
			return domain.ErrNotFound
		}

		current, err := assignRepo.GetActiveByLead(in.LeadID)
		if err != nil {
			return err
		}
		if current != nil && current.OwnerID == in.OwnerID {
			// No-op idempotente: misma asignación, mismos contadores.
			result = toAssignmentResponse(current, false)
			return nil
		}

		// Bloquear las filas de asesor en orden ascendente de id para que dos
		// swaps concurrentes no se interbloqueen.
		lockIDs := []string{in.OwnerID}
		if current != nil {
			lockIDs = append(lockIDs, current.OwnerID)
			sort.Strings(lockIDs)
		}
		for _, id := range lockIDs {
			if _, err := ownerRepo.GetForUpdate(id); err != nil {
				return err
			}
		}

		warning := false
		if !lead.Terminal() {
			if current != nil {
				if err := ownerRepo.ReleaseSlot(current.OwnerID); err != nil {
					return err
				}
			}
			warning, err = ownerRepo.ReserveSlot(in.OwnerID, in.Override)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		if current != nil {
			if err := assignRepo.Supersede(current.ID, now); err != nil {
				return err
			}
		}
		a := &entity.Assignment{
			ID:         uuid.New().String(),
			LeadID:     lead.ID,
			OwnerID:    in.OwnerID,
			Origin:     in.Origin,
			AssignedBy: in.AssignedBy,
			AssignedAt: now,
		}
		if err := assignRepo.Create(a); err != nil {
			return err
		}
		if err := leadRepo.SetOwner(lead.ID, &a.OwnerID); err != nil {
			return err
		}

		result = toAssignmentResponse(a, warning)
		ev = &ports.LeadAssignedEvent{
			LeadID:          lead.ID,
			OwnerID:         in.OwnerID,
			Origin:          in.Origin,
			AssignedBy:      in.AssignedBy,
			CapacityWarning: warning,
		}
		if current != nil {
			ev.PreviousOwnerID = current.OwnerID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		// La asignación ya está confirmada: un fallo del broker no la revierte.
		if perr := uc.publisher.PublishLeadAssigned(ctx, *ev); perr != nil {
			uc.log.Warn().Err(perr).Str("lead_id", ev.LeadID).Msg("no se pudo publicar lead.assigned")
		}
	}
	return result, nil
}

// BulkAssign asigna una lista de leads al mismo asesor, uno a uno en el orden
// de entrada. Una falla de cupo en un lead no aborta el lote: cada resultado
// se reporta individualmente. Los ítems ya confirmados no se revierten; una
// cancelación del contexto solo evita que arranquen los pendientes.
func (uc *AssignmentUseCase) BulkAssign(ctx context.Context, leadIDs []string, ownerID, assignedBy string, allowOverride bool) (*dto.BatchResult, error) {
	if len(leadIDs) == 0 || ownerID == "" {
		return nil, domain.ErrInvalidInput
	}

	result := &dto.BatchResult{
		Succeeded: []dto.AssignmentResponse{},
		Failed:    []dto.BatchFailure{},
	}
	for _, leadID := range leadIDs {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, dto.BatchFailure{LeadID: leadID, Reason: "canceled"})
			continue
		}
		resp, err := uc.Assign(ctx, AssignInput{
			LeadID:     leadID,
			OwnerID:    ownerID,
			Origin:     entity.AssignmentOriginBulk,
			AssignedBy: assignedBy,
			Override:   allowOverride,
		})
		if err != nil {
			result.Failed = append(result.Failed, dto.BatchFailure{LeadID: leadID, Reason: FailureReason(err)})
			continue
		}
		result.Succeeded = append(result.Succeeded, *resp)
	}
	return result, nil
}

// History devuelve el historial completo de asignaciones de un lead, más reciente primero.
func (uc *AssignmentUseCase) History(ctx context.Context, leadID string) ([]dto.AssignmentResponse, error) {
	var history []*entity.Assignment
	err := uc.txRunner.Run(ctx, func(
		leadRepo repository.LeadRepository,
		_ repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
	) error {
		lead, err := leadRepo.GetByID(leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return domain.ErrNotFound
		}
		history, err = assignRepo.HistoryByLead(leadID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(history))
	for _, a := range history {
		out = append(out, *toAssignmentResponse(a, false))
	}
	return out, nil
}

// FailureReason traduce un error del motor a un código estable para reportes por ítem.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrOwnerUnavailable):
		return "owner_unavailable"
	case errors.Is(err, domain.ErrRegistryCorrupted):
		return "registry_corrupted"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrLeadMerged):
		return "lead_merged"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

func toAssignmentResponse(a *entity.Assignment, warning bool) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:              a.ID,
		LeadID:          a.LeadID,
		OwnerID:         a.OwnerID,
		Origin:          a.Origin,
		AssignedBy:      a.AssignedBy,
		AssignedAt:      a.AssignedAt,
		SupersededAt:    a.SupersededAt,
		CapacityWarning: warning,
	}
}
