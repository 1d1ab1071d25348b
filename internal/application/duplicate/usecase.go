package duplicate

import (
	"context"
	"sort"
	"time"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/application/ports"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

// Acciones de resolución.
const (
	ActionMerge  = "merge"
	ActionIgnore = "ignore"
)

// DuplicateUseCase resolución manual de candidatos a duplicado: fusionar los
// dos leads en uno o descartar el candidato. La resolución es terminal.
type DuplicateUseCase struct {
	txRunner  TxRunner
	dupRepo   repository.DuplicateRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewDuplicateUseCase construye el caso de uso.
func NewDuplicateUseCase(
	txRunner TxRunner,
	dupRepo repository.DuplicateRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *DuplicateUseCase {
	return &DuplicateUseCase{
		txRunner:  txRunner,
		dupRepo:   dupRepo,
		publisher: publisher,
		log:       log,
	}
}

// Resolve aplica la acción sobre un candidato pendiente. Resolver dos veces
// devuelve ErrAlreadyResolved (la primera resolución gana).
func (uc *DuplicateUseCase) Resolve(ctx context.Context, candidateID, action, userID string) (*dto.MergeResultResponse, error) {
	switch action {
	case ActionMerge:
		return uc.merge(ctx, candidateID, userID)
	case ActionIgnore:
		return nil, uc.ignore(ctx, candidateID, userID)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// merge fusiona los dos leads del candidato. Sobrevive el creado primero
// (empate: id menor). El retirado queda marcado con back-reference al
// superviviente, su asignación vigente se cierra liberando el cupo, y su
// historial de actividades y asignaciones pasa al superviviente. Todo en una
// transacción.
func (uc *DuplicateUseCase) merge(ctx context.Context, candidateID, userID string) (*dto.MergeResultResponse, error) {
	var result *dto.MergeResultResponse
	var ev *ports.LeadsMergedEvent

	err := uc.txRunner.RunMerge(ctx, func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		assignRepo repository.AssignmentRepository,
		dupRepo repository.DuplicateRepository,
		actRepo repository.ActivityRepository,
	) error {
		candidate, err := dupRepo.GetForUpdate(candidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return domain.ErrNotFound
		}
		if candidate.Resolved() {
			return domain.ErrAlreadyResolved
		}

		// Bloquear las dos filas de lead en orden ascendente de id.
		lockIDs := []string{candidate.LeadID, candidate.DuplicateOf}
		sort.Strings(lockIDs)
		leads := map[string]*entity.Lead{}
		for _, id := range lockIDs {
			lead, err := leadRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if lead == nil {
				return domain.ErrNotFound
			}
			if lead.Merged() {
				return domain.ErrLeadMerged
			}
			leads[id] = lead
		}

		survivor, retired := pickSurvivor(leads[candidate.LeadID], leads[candidate.DuplicateOf])

		// Cerrar la asignación vigente del retirado y devolver el cupo.
		active, err := assignRepo.GetActiveByLead(retired.ID)
		if err != nil {
			return err
		}
		if active != nil {
			if err := assignRepo.Supersede(active.ID, time.Now()); err != nil {
				return err
			}
			if !retired.Terminal() {
				if err := ownerRepo.ReleaseSlot(active.OwnerID); err != nil {
					return err
				}
			}
		}

		// El historial completo del retirado pasa al superviviente.
		if err := assignRepo.TransferHistory(retired.ID, survivor.ID); err != nil {
			return err
		}
		if err := actRepo.TransferHistory(retired.ID, survivor.ID); err != nil {
			return err
		}

		// El primer contacto del retirado vale para el superviviente si este
		// aún no tiene uno.
		if retired.FirstContactAt != nil {
			if err := leadRepo.SetFirstContact(survivor.ID, *retired.FirstContactAt); err != nil {
				return err
			}
		}

		if err := leadRepo.SetMergedInto(retired.ID, survivor.ID); err != nil {
			return err
		}
		if err := dupRepo.Resolve(candidateID, entity.DuplicateMerged, userID, time.Now()); err != nil {
			return err
		}

		result = &dto.MergeResultResponse{SurvivorID: survivor.ID, RetiredID: retired.ID}
		ev = &ports.LeadsMergedEvent{SurvivorID: survivor.ID, RetiredID: retired.ID, ResolvedBy: userID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		// El merge ya está confirmado; un fallo del broker no lo revierte.
		if perr := uc.publisher.PublishLeadsMerged(ctx, *ev); perr != nil {
			uc.log.Warn().Err(perr).Str("survivor_id", ev.SurvivorID).Msg("no se pudo publicar leads.merged")
		}
	}
	return result, nil
}

// pickSurvivor decide qué lead sobrevive: el creado primero; empate de
// timestamp lo rompe el id menor (determinista).
func pickSurvivor(a, b *entity.Lead) (survivor, retired *entity.Lead) {
	if a.CreatedAt.Before(b.CreatedAt) {
		return a, b
	}
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	if a.ID < b.ID {
		return a, b
	}
	return b, a
}

// ignore descarta el candidato sin tocar los leads.
func (uc *DuplicateUseCase) ignore(ctx context.Context, candidateID, userID string) error {
	return uc.txRunner.RunMerge(ctx, func(
		_ repository.LeadRepository,
		_ repository.OwnerRepository,
		_ repository.AssignmentRepository,
		dupRepo repository.DuplicateRepository,
		_ repository.ActivityRepository,
	) error {
		candidate, err := dupRepo.GetForUpdate(candidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return domain.ErrNotFound
		}
		if candidate.Resolved() {
			return domain.ErrAlreadyResolved
		}
		return dupRepo.Resolve(candidateID, entity.DuplicateIgnored, userID, time.Now())
	})
}
