package lead_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelead/drivelead-api/internal/application/apptest"
	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/application/lead"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

type fixedSuggester struct {
	ownerID string
}

func (s fixedSuggester) SuggestOwner(_ context.Context, leadID string) (*dto.SuggestionResponse, error) {
	if s.ownerID == "" {
		return nil, domain.ErrNoAvailableOwner
	}
	return &dto.SuggestionResponse{LeadID: leadID, OwnerID: s.ownerID, Reason: "load_balance"}, nil
}

func newLeadUC(store *apptest.Store, opts lead.Options, suggestOwner string) *lead.LeadUseCase {
	if opts.SLA == nil {
		opts.SLA = routing.SLATable{entity.ChannelWebsite: 4 * time.Hour}
	}
	if opts.DuplicateThreshold == 0 {
		opts.DuplicateThreshold = 70
	}
	return lead.NewLeadUseCase(
		store.TxRunner(),
		store.LeadRepo(),
		store.AssignmentRepo(),
		store.ActivityRepo(),
		store.DuplicateRepo(),
		store.CampaignRepo(),
		store.UserRepo(),
		fixedSuggester{ownerID: suggestOwner},
		opts,
		logger.New(logger.Config{Env: "test", Level: "error"}),
	)
}

func seedUser(store *apptest.Store, id, role string, ownerID *string) {
	_ = store.UserRepo().Create(&entity.User{
		ID: id, Email: id + "@drivelead.test", Role: role, Status: "active", OwnerID: ownerID,
	})
}

// La captura crea el lead en estado new y sin asesor.
func TestCreate_LeadNuevo(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")

	resp, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "Carlos Pérez", Phone: "300 123 4567", Channel: entity.ChannelWebsite,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, resp.Status)
	assert.Nil(t, resp.OwnerID)
	assert.NotEmpty(t, resp.ID)
}

// Capturar un lead con el mismo teléfono y email que uno existente registra
// un candidato a duplicado pendiente; la captura no se bloquea.
func TestCreate_DetectaDuplicado(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")

	first, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "Carlos Pérez", Phone: "3001234567", Email: "carlos@mail.com", Channel: entity.ChannelWebsite,
	})
	require.NoError(t, err)
	second, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "C. Pérez", Phone: "300-123-4567", Email: "Carlos@mail.com", Channel: entity.ChannelWhatsApp,
	})
	require.NoError(t, err)

	candidates, err := uc.ListDuplicates(context.Background(), second.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, first.ID, candidates[0].DuplicateOf)
	assert.Equal(t, entity.DuplicatePending, candidates[0].Resolution)
	assert.GreaterOrEqual(t, candidates[0].Score, 70)
}

// El prefijo de país en el teléfono y los diacríticos en el nombre no
// esconden al duplicado: la comparación usa los últimos 10 dígitos y los
// tokens plegados.
func TestCreate_DuplicadoConPrefijoDePaisYDiacriticos(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")

	first, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "José García", Phone: "9876543210", Channel: entity.ChannelWebsite,
	})
	require.NoError(t, err)
	second, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "Jose Garcia", Phone: "+91 9876543210", Channel: entity.ChannelPhone,
	})
	require.NoError(t, err)

	// teléfono 60 + nombre completo 15 = 75, sobre el umbral de 70
	candidates, err := uc.ListDuplicates(context.Background(), second.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, first.ID, candidates[0].DuplicateOf)
	assert.Equal(t, 75, candidates[0].Score)
}

// Leads distintos por debajo del umbral no generan candidato.
func TestCreate_SinDuplicadoBajoUmbral(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")

	_, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "Carlos Pérez", Phone: "3001234567", Channel: entity.ChannelWebsite,
	})
	require.NoError(t, err)
	second, err := uc.Create(context.Background(), dto.CreateLeadRequest{
		Name: "Lucía Gómez", Phone: "3159876543", Channel: entity.ChannelFacebook,
	})
	require.NoError(t, err)

	candidates, err := uc.ListDuplicates(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

// Campos obligatorios y canal desconocido.
func TestCreate_EntradaInvalida(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")

	_, err := uc.Create(context.Background(), dto.CreateLeadRequest{Phone: "300", Channel: entity.ChannelWebsite})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(context.Background(), dto.CreateLeadRequest{Name: "X", Phone: "300", Channel: "Telegram"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Cerrar un lead asignado (won) libera el cupo del asesor.
func TestChangeStatus_CierreLiberaCupo(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")
	_ = store.OwnerRepo().Create(&entity.Owner{ID: "owner-1", Capacity: 5, CurrentLoad: 1, Available: true})
	ownerID := "owner-1"
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusFollowup, OwnerID: &ownerID, CreatedAt: now, UpdatedAt: now,
	})
	seedUser(store, "mgr-1", domain.RoleManager, nil)

	resp, err := uc.ChangeStatus(context.Background(), "lead-1", entity.StatusWon, "mgr-1", domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWon, resp.Status)
	assert.Equal(t, 0, store.Owners["owner-1"].CurrentLoad)
}

// Con la reapertura deshabilitada, un terminal no sale de su estado.
func TestChangeStatus_ReopenDeshabilitado(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{AllowReopen: false}, "")
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusLost, CreatedAt: now, UpdatedAt: now,
	})

	_, err := uc.ChangeStatus(context.Background(), "lead-1", entity.StatusFollowup, "mgr-1", domain.RoleManager)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Reabrir un lead asignado vuelve a consumir cupo, incluso sobre el tope.
func TestChangeStatus_ReopenRetomaCupo(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{AllowReopen: true}, "")
	_ = store.OwnerRepo().Create(&entity.Owner{ID: "owner-1", Capacity: 1, CurrentLoad: 1, Available: true})
	ownerID := "owner-1"
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusWon, OwnerID: &ownerID, CreatedAt: now, UpdatedAt: now,
	})

	resp, err := uc.ChangeStatus(context.Background(), "lead-1", entity.StatusFollowup, "mgr-1", domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFollowup, resp.Status)
	assert.Equal(t, 2, store.Owners["owner-1"].CurrentLoad)
}

// Retroceder en el pipeline está prohibido.
func TestChangeStatus_RetrocesoProhibido(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusQualified, CreatedAt: now, UpdatedAt: now,
	})

	_, err := uc.ChangeStatus(context.Background(), "lead-1", entity.StatusNew, "mgr-1", domain.RoleManager)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// Un vendedor solo edita leads asignados a su asesor.
func TestUpdate_VendedorSoloSusLeads(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")
	otherOwner := "owner-b"
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusNew, OwnerID: &otherOwner, CreatedAt: now, UpdatedAt: now,
	})
	myOwner := "owner-a"
	seedUser(store, "seller-1", domain.RoleSales, &myOwner)

	nuevoNombre := "Otro Nombre"
	_, err := uc.Update(context.Background(), "lead-1", dto.UpdateLeadRequest{Name: &nuevoNombre}, "seller-1", domain.RoleSales)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// La primera comunicación congela el reloj SLA; una nota no cuenta.
func TestRegisterActivity_PrimerContactoSoloComunicaciones(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusNew, CreatedAt: now, UpdatedAt: now,
	})
	seedUser(store, "mgr-1", domain.RoleManager, nil)

	_, err := uc.RegisterActivity(context.Background(), "lead-1", dto.RegisterActivityRequest{
		Type: entity.ActivityNote, Title: "Nota interna",
	}, "mgr-1", domain.RoleManager)
	require.NoError(t, err)
	assert.Nil(t, store.Leads["lead-1"].FirstContactAt)

	_, err = uc.RegisterActivity(context.Background(), "lead-1", dto.RegisterActivityRequest{
		Type: entity.ActivityCall, Title: "Llamada de bienvenida",
	}, "mgr-1", domain.RoleManager)
	require.NoError(t, err)
	require.NotNil(t, store.Leads["lead-1"].FirstContactAt)
	first := *store.Leads["lead-1"].FirstContactAt

	// Una segunda comunicación no mueve el primer contacto.
	_, err = uc.RegisterActivity(context.Background(), "lead-1", dto.RegisterActivityRequest{
		Type: entity.ActivityWhatsApp, Title: "Seguimiento",
	}, "mgr-1", domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, first, *store.Leads["lead-1"].FirstContactAt)
}

// El listado de no asignados enriquece cada lead con SLA y asesor sugerido.
func TestList_NoAsignadosConSugerencia(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "owner-sug")
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusNew, CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now,
	})

	out, err := uc.List(context.Background(), repository.LeadFilter{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "owner-sug", out.Items[0].SuggestedOwnerID)
	assert.Equal(t, string(routing.SLAAtRisk), out.Items[0].SLA) // 3h de 4h
}

// GetSLA reporta estado, objetivo del canal y minutos transcurridos.
func TestGetSLA_LeadSinContacto(t *testing.T) {
	store := apptest.NewStore()
	uc := newLeadUC(store, lead.Options{}, "")
	now := time.Now()
	_ = store.LeadRepo().Create(&entity.Lead{
		ID: "lead-1", Name: "L", Phone: "300", Channel: entity.ChannelWebsite,
		Status: entity.StatusNew, CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now,
	})

	resp, err := uc.GetSLA(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, string(routing.SLABreached), resp.State)
	assert.Equal(t, 4.0, resp.TargetHours)
	assert.GreaterOrEqual(t, resp.ElapsedMin, int64(299))
}
