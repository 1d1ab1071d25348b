package lead

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

// Options parámetros de ruteo del caso de uso (vienen de configuración).
type Options struct {
	SLA                routing.SLATable
	DuplicateThreshold int
	AllowReopen        bool
}

// LeadUseCase ciclo de vida del lead: captura con detección de duplicados,
// edición, pipeline de estados, timeline de actividades y consultas de SLA.
type LeadUseCase struct {
	txRunner     TxRunner
	leadRepo     repository.LeadRepository
	assignRepo   repository.AssignmentRepository
	activityRepo repository.ActivityRepository
	dupRepo      repository.DuplicateRepository
	campaignRepo repository.CampaignRepository
	userRepo     repository.UserRepository
	suggester    OwnerSuggester
	opts         Options
	log          *logger.Logger
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(
	txRunner TxRunner,
	leadRepo repository.LeadRepository,
	assignRepo repository.AssignmentRepository,
	activityRepo repository.ActivityRepository,
	dupRepo repository.DuplicateRepository,
	campaignRepo repository.CampaignRepository,
	userRepo repository.UserRepository,
	suggester OwnerSuggester,
	opts Options,
	log *logger.Logger,
) *LeadUseCase {
	return &LeadUseCase{
		txRunner:     txRunner,
		leadRepo:     leadRepo,
		assignRepo:   assignRepo,
		activityRepo: activityRepo,
		dupRepo:      dupRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		suggester:    suggester,
		opts:         opts,
		log:          log,
	}
}

// Create captura un lead nuevo y corre la detección de duplicados contra el
// corpus existente. Los candidatos detectados quedan pendientes de resolución
// manual; la captura nunca se bloquea por un posible duplicado.
func (uc *LeadUseCase) Create(ctx context.Context, req dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidChannel(req.Channel) {
		return nil, domain.ErrInvalidInput
	}
	if req.BudgetMin != nil && req.BudgetMax != nil && req.BudgetMin.GreaterThan(*req.BudgetMax) {
		return nil, domain.ErrInvalidInput
	}

	var campaignID *string
	if req.CampaignID != "" {
		campaign, err := uc.campaignRepo.GetByID(req.CampaignID)
		if err != nil {
			return nil, err
		}
		if campaign == nil {
			return nil, domain.ErrNotFound
		}
		campaignID = &campaign.ID
	}

	now := time.Now()
	lead := &entity.Lead{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Channel:         req.Channel,
		Status:          entity.StatusNew,
		CampaignID:      campaignID,
		CarInterest:     req.CarInterest,
		Timeline:        req.Timeline,
		Address:         req.Address,
		Occupation:      req.Occupation,
		DNDSms:          req.DNDSms,
		DNDCall:         req.DNDCall,
		ConsentWhatsApp: req.ConsentWhatsApp,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.BudgetMin != nil {
		lead.BudgetMin = *req.BudgetMin
	}
	if req.BudgetMax != nil {
		lead.BudgetMax = *req.BudgetMax
	}

	if err := uc.leadRepo.Create(lead); err != nil {
		return nil, err
	}

	uc.detectDuplicates(lead)

	return toLeadResponse(lead), nil
}

// detectDuplicates compara el lead contra el corpus y registra candidatos
// con score >= umbral. Un fallo aquí no revierte la captura: se loguea y sigue.
func (uc *LeadUseCase) detectDuplicates(lead *entity.Lead) {
	corpus, err := uc.leadRepo.FindSimilar(lead)
	if err != nil {
		uc.log.Warn().Err(err).Str("lead_id", lead.ID).Msg("detección de duplicados falló")
		return
	}
	for _, other := range corpus {
		score := routing.Score(lead, other)
		if score < uc.opts.DuplicateThreshold {
			continue
		}
		exists, err := uc.dupRepo.ExistsPair(lead.ID, other.ID)
		if err != nil {
			uc.log.Warn().Err(err).Str("lead_id", lead.ID).Msg("no se pudo verificar par duplicado")
			continue
		}
		if exists {
			continue
		}
		candidate := &entity.DuplicateCandidate{
			ID:          uuid.New().String(),
			LeadID:      lead.ID,
			DuplicateOf: other.ID,
			Score:       score,
			Resolution:  entity.DuplicatePending,
			CreatedAt:   time.Now(),
		}
		if err := uc.dupRepo.Create(candidate); err != nil {
			uc.log.Warn().Err(err).Str("lead_id", lead.ID).Msg("no se pudo registrar candidato a duplicado")
			continue
		}
		uc.log.Info().
			Str("lead_id", lead.ID).
			Str("duplicate_of", other.ID).
			Int("score", score).
			Msg("candidato a duplicado detectado")
	}
}

// Update edita los campos de perfil del lead. Un asesor solo puede editar
// leads asignados a él; un manager no edita campos de perfil (solo opera el
// pipeline), así que la regla es la misma para ambos por la tabla de permisos.
func (uc *LeadUseCase) Update(ctx context.Context, leadID string, req dto.UpdateLeadRequest, userID, role string) (*dto.LeadResponse, error) {
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
	if role == domain.RoleSales {
		if err := uc.requireOwnership(lead, userID); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		lead.Name = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return nil, domain.ErrInvalidInput
		}
		lead.Phone = *req.Phone
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.CarInterest != nil {
		lead.CarInterest = *req.CarInterest
	}
	if req.BudgetMin != nil {
		lead.BudgetMin = *req.BudgetMin
	}
	if req.BudgetMax != nil {
		lead.BudgetMax = *req.BudgetMax
	}
	if !lead.BudgetMin.IsZero() && !lead.BudgetMax.IsZero() && lead.BudgetMin.GreaterThan(lead.BudgetMax) {
		return nil, domain.ErrInvalidInput
	}
	if req.Timeline != nil {
		lead.Timeline = *req.Timeline
	}
	if req.Address != nil {
		lead.Address = *req.Address
	}
	if req.Occupation != nil {
		lead.Occupation = *req.Occupation
	}
	if req.DNDSms != nil {
		lead.DNDSms = *req.DNDSms
	}
	if req.DNDCall != nil {
		lead.DNDCall = *req.DNDCall
	}
	if req.ConsentWhatsApp != nil {
		lead.ConsentWhatsApp = *req.ConsentWhatsApp
	}
	lead.UpdatedAt = time.Now()

	if err := uc.leadRepo.Update(lead); err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

// ChangeStatus avanza el lead por el pipeline. El pipeline solo avanza; la
// única vuelta atrás permitida es la reapertura de un terminal, y solo si la
// configuración lo habilita. El cupo del asesor sigue al estado: cerrar un
// lead asignado libera el slot, reabrirlo lo vuelve a consumir.
func (uc *LeadUseCase) ChangeStatus(ctx context.Context, leadID, newStatus, userID, role string) (*dto.LeadResponse, error) {
	if !entity.ValidStatus(newStatus) {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Lead
	err := uc.txRunner.Run(ctx, func(
		leadRepo repository.LeadRepository,
		ownerRepo repository.OwnerRepository,
		_ repository.AssignmentRepository,
	) error {
		lead, err := leadRepo.GetForUpdate(leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return domain.ErrNotFound
		}
		if lead.Merged() {
			return domain.ErrLeadMerged
		}
		if role == domain.RoleSales {
			if err := uc.requireOwnership(lead, userID); err != nil {
				return err
			}
		}
		if err := routing.CanTransition(lead.Status, newStatus, uc.opts.AllowReopen); err != nil {
			return err
		}

		wasTerminal := lead.Terminal()
		if err := leadRepo.SetStatus(leadID, newStatus); err != nil {
			return err
		}
		lead.Status = newStatus

		// Un lead terminal no ocupa cupo aunque conserve asesor.
		if lead.Assigned() {
			switch {
			case !wasTerminal && lead.Terminal():
				if err := ownerRepo.ReleaseSlot(*lead.OwnerID); err != nil {
					return err
				}
			case wasTerminal && !lead.Terminal():
				// Reapertura: el cupo se retoma aunque el asesor esté al tope.
				warning, err := ownerRepo.ReserveSlot(*lead.OwnerID, true)
				if err != nil {
					return err
				}
				if warning {
					uc.log.Warn().
						Str("lead_id", leadID).
						Str("owner_id", *lead.OwnerID).
						Msg("reapertura dejó al asesor sobre su capacidad")
				}
			}
		}

		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLeadResponse(updated), nil
}

// RegisterActivity agrega una actividad al timeline del lead. La primera
// comunicación saliente (llamada, SMS, email, WhatsApp) congela el reloj SLA;
// las notas no cuentan como contacto.
func (uc *LeadUseCase) RegisterActivity(ctx context.Context, leadID string, req dto.RegisterActivityRequest, userID, role string) (*dto.ActivityResponse, error) {
	if !entity.ValidActivityType(req.Type) || req.Title == "" {
		return nil, domain.ErrInvalidInput
	}

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
	if role == domain.RoleSales {
		if err := uc.requireOwnership(lead, userID); err != nil {
			return nil, err
		}
	}

	activity := &entity.Activity{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	if err := uc.activityRepo.Create(activity); err != nil {
		return nil, err
	}
	if activity.Communication() {
		if err := uc.leadRepo.SetFirstContact(leadID, activity.CreatedAt); err != nil {
			return nil, err
		}
	}
	return toActivityResponse(activity), nil
}

// List lista leads con filtros. Cada lead sale con su clasificación SLA; los
// no asignados salen además con el asesor sugerido (best effort: si no hay
// cupo para sugerir, el campo va vacío).
func (uc *LeadUseCase) List(ctx context.Context, filter repository.LeadFilter) (*dto.LeadListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	leads, err := uc.leadRepo.List(filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]dto.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		resp := toLeadResponse(lead)
		resp.SLA = string(routing.Classify(lead, now, uc.opts.SLA))
		if !lead.Assigned() && !lead.Terminal() {
			if s, err := uc.suggester.SuggestOwner(ctx, lead.ID); err == nil {
				resp.SuggestedOwnerID = s.OwnerID
			}
		}
		items = append(items, *resp)
	}
	return &dto.LeadListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

// GetDetail devuelve el lead con su timeline y su historial de asignaciones.
func (uc *LeadUseCase) GetDetail(ctx context.Context, leadID string) (*dto.LeadDetailResponse, error) {
	lead, err := uc.leadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}

	resp := toLeadResponse(lead)
	resp.SLA = string(routing.Classify(lead, time.Now(), uc.opts.SLA))

	activities, err := uc.activityRepo.ListByLead(leadID)
	if err != nil {
		return nil, err
	}
	history, err := uc.assignRepo.HistoryByLead(leadID)
	if err != nil {
		return nil, err
	}

	detail := &dto.LeadDetailResponse{
		Lead:        *resp,
		Activities:  make([]dto.ActivityResponse, 0, len(activities)),
		Assignments: make([]dto.AssignmentResponse, 0, len(history)),
	}
	for _, a := range activities {
		detail.Activities = append(detail.Activities, *toActivityResponse(a))
	}
	for _, a := range history {
		detail.Assignments = append(detail.Assignments, dto.AssignmentResponse{
			ID:           a.ID,
			LeadID:       a.LeadID,
			OwnerID:      a.OwnerID,
			Origin:       a.Origin,
			AssignedBy:   a.AssignedBy,
			AssignedAt:   a.AssignedAt,
			SupersededAt: a.SupersededAt,
		})
	}
	return detail, nil
}

// GetSLA devuelve la clasificación SLA vigente del lead con los datos crudos
// (objetivo del canal y tiempo transcurrido).
func (uc *LeadUseCase) GetSLA(ctx context.Context, leadID string) (*dto.SLAResponse, error) {
	lead, err := uc.leadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	elapsed := now.Sub(lead.CreatedAt)
	if lead.FirstContactAt != nil {
		elapsed = lead.FirstContactAt.Sub(lead.CreatedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	return &dto.SLAResponse{
		LeadID:         lead.ID,
		Channel:        lead.Channel,
		State:          string(routing.Classify(lead, now, uc.opts.SLA)),
		TargetHours:    uc.opts.SLA.Target(lead.Channel).Hours(),
		ElapsedMin:     int64(elapsed.Minutes()),
		FirstContactAt: lead.FirstContactAt,
	}, nil
}

// ListDuplicates devuelve los candidatos a duplicado donde el lead participa,
// score descendente.
func (uc *LeadUseCase) ListDuplicates(ctx context.Context, leadID string) ([]dto.DuplicateResponse, error) {
	lead, err := uc.leadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	candidates, err := uc.dupRepo.ListByLead(leadID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DuplicateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dto.DuplicateResponse{
			ID:          c.ID,
			LeadID:      c.LeadID,
			DuplicateOf: c.DuplicateOf,
			Score:       c.Score,
			Resolution:  c.Resolution,
			ResolvedBy:  c.ResolvedBy,
			ResolvedAt:  c.ResolvedAt,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out, nil
}

// requireOwnership verifica que el lead esté asignado al asesor del usuario.
func (uc *LeadUseCase) requireOwnership(lead *entity.Lead, userID string) error {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil || user.OwnerID == nil {
		return domain.ErrForbidden
	}
	if lead.OwnerID == nil || *lead.OwnerID != *user.OwnerID {
		return domain.ErrForbidden
	}
	return nil
}

func toLeadResponse(lead *entity.Lead) *dto.LeadResponse {
	return &dto.LeadResponse{
		ID:              lead.ID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		Email:           lead.Email,
		Channel:         lead.Channel,
		Status:          lead.Status,
		OwnerID:         lead.OwnerID,
		CampaignID:      lead.CampaignID,
		CarInterest:     lead.CarInterest,
		BudgetMin:       lead.BudgetMin,
		BudgetMax:       lead.BudgetMax,
		Timeline:        lead.Timeline,
		Address:         lead.Address,
		Occupation:      lead.Occupation,
		DNDSms:          lead.DNDSms,
		DNDCall:         lead.DNDCall,
		ConsentWhatsApp: lead.ConsentWhatsApp,
		FirstContactAt:  lead.FirstContactAt,
		MergedIntoID:    lead.MergedIntoID,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

func toActivityResponse(a *entity.Activity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
}
