package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelead/drivelead-api/internal/application/apptest"
	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

func newEngine(store *apptest.Store) (*assignment.AssignmentUseCase, *apptest.EventRecorder) {
	rec := &apptest.EventRecorder{}
	uc := assignment.NewAssignmentUseCase(
		store.TxRunner(),
		store.LeadRepo(),
		store.OwnerRepo(),
		rec,
		logger.New(logger.Config{Env: "test", Level: "error"}),
	)
	return uc, rec
}

func seedOwner(store *apptest.Store, id string, capacity, load int) *entity.Owner {
	o := &entity.Owner{
		ID:          id,
		Name:        "Asesor " + id,
		Email:       id + "@drivelead.test",
		Capacity:    capacity,
		CurrentLoad: load,
		Available:   true,
	}
	_ = store.OwnerRepo().Create(o)
	return o
}

func seedLead(store *apptest.Store, id, channel, status string) *entity.Lead {
	now := time.Now()
	l := &entity.Lead{
		ID:        id,
		Name:      "Lead " + id,
		Phone:     "3001234567",
		Channel:   channel,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = store.LeadRepo().Create(l)
	return l
}

// Asignar un lead nuevo incrementa la carga del asesor en exactamente 1 y
// deja registro en el historial.
func TestAssign_IncrementaCarga(t *testing.T) {
	store := apptest.NewStore()
	uc, rec := newEngine(store)
	seedOwner(store, "owner-1", 5, 0)
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	resp, err := uc.Assign(context.Background(), assignment.AssignInput{
		LeadID: "lead-1", OwnerID: "owner-1", AssignedBy: "mgr-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", resp.OwnerID)
	assert.False(t, resp.CapacityWarning)

	assert.Equal(t, 1, store.Owners["owner-1"].CurrentLoad)
	require.NotNil(t, store.Leads["lead-1"].OwnerID)
	assert.Equal(t, "owner-1", *store.Leads["lead-1"].OwnerID)
	require.Len(t, rec.Assigned, 1)
	assert.Equal(t, "lead-1", rec.Assigned[0].LeadID)
}

// Reasignar al mismo asesor es idempotente: no crea asignación nueva ni toca contadores.
func TestAssign_IdempotenteMismoAsesor(t *testing.T) {
	store := apptest.NewStore()
	uc, rec := newEngine(store)
	seedOwner(store, "owner-1", 5, 0)
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	first, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	require.NoError(t, err)
	second, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.Owners["owner-1"].CurrentLoad)
	assert.Len(t, store.Assignments, 1)
	assert.Len(t, rec.Assigned, 1) // el no-op no publica evento
}

// El swap de asesor es atómico sobre las cargas: -1 al anterior, +1 al nuevo,
// y la asignación previa queda cerrada en el historial.
func TestAssign_SwapAjustaAmbasCargas(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-a", 5, 0)
	seedOwner(store, "owner-b", 5, 0)
	seedLead(store, "lead-1", entity.ChannelPhone, entity.StatusContacted)

	_, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-a"})
	require.NoError(t, err)
	_, err = uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-b"})
	require.NoError(t, err)

	assert.Equal(t, 0, store.Owners["owner-a"].CurrentLoad)
	assert.Equal(t, 1, store.Owners["owner-b"].CurrentLoad)

	history, err := uc.History(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].SupersededAt) // vigente primero
	assert.NotNil(t, history[1].SupersededAt)
}

// Sin override, el tope de capacidad rechaza la asignación y no toca nada.
func TestAssign_CapacidadLlenaFallaCerrado(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 2, 2)
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	_, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 2, store.Owners["owner-1"].CurrentLoad)
	assert.Nil(t, store.Leads["lead-1"].OwnerID)
	assert.Empty(t, store.Assignments)
}

// Con override, la asignación procede por encima del tope y reporta warning.
func TestAssign_OverrideSobreElTope(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 2, 2)
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	resp, err := uc.Assign(context.Background(), assignment.AssignInput{
		LeadID: "lead-1", OwnerID: "owner-1", Override: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.CapacityWarning)
	assert.Equal(t, 3, store.Owners["owner-1"].CurrentLoad)
}

// Un lead terminal puede cambiar de asesor para historial, pero no consume cupo.
func TestAssign_LeadTerminalNoConsumeCupo(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 1, 1) // sin cupo libre
	seedLead(store, "lead-1", entity.ChannelReferral, entity.StatusWon)

	resp, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.False(t, resp.CapacityWarning)
	assert.Equal(t, 1, store.Owners["owner-1"].CurrentLoad)
}

// Asesor no disponible rechaza la asignación.
func TestAssign_AsesorNoDisponible(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	o := seedOwner(store, "owner-1", 5, 0)
	o.Available = false
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	_, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domain.ErrOwnerUnavailable)
}

// Un lead fusionado no acepta asignaciones.
func TestAssign_LeadFusionadoRechazado(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 5, 0)
	lead := seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)
	survivor := "lead-0"
	lead.MergedIntoID = &survivor

	_, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domain.ErrLeadMerged)
}

// Una liberación que dejaría la carga negativa congela al asesor: queda fuera
// de rotación hasta revisión manual.
func TestAssign_CargaNegativaCongelaAsesor(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-a", 5, 0) // carga inconsistente: tiene el lead pero load 0
	seedOwner(store, "owner-b", 5, 0)
	lead := seedLead(store, "lead-1", entity.ChannelPhone, entity.StatusContacted)
	ownerA := "owner-a"
	lead.OwnerID = &ownerA
	_ = store.AssignmentRepo().Create(&entity.Assignment{
		ID: "as-1", LeadID: "lead-1", OwnerID: "owner-a",
		Origin: entity.AssignmentOriginManual, AssignedAt: time.Now(),
	})

	_, err := uc.Assign(context.Background(), assignment.AssignInput{LeadID: "lead-1", OwnerID: "owner-b"})
	assert.ErrorIs(t, err, domain.ErrRegistryCorrupted)
	assert.True(t, store.Owners["owner-a"].Frozen)
}

// La sugerencia prefiere asesores con historial en el canal del lead.
func TestSuggestOwner_PrefiereAfinidadDeCanal(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-wa", 5, 3) // con historial WhatsApp pero más cargado
	seedOwner(store, "owner-free", 5, 0)
	seedLead(store, "lead-old", entity.ChannelWhatsApp, entity.StatusWon)
	_ = store.AssignmentRepo().Create(&entity.Assignment{
		ID: "as-old", LeadID: "lead-old", OwnerID: "owner-wa",
		Origin: entity.AssignmentOriginManual, AssignedAt: time.Now(),
	})
	seedLead(store, "lead-new", entity.ChannelWhatsApp, entity.StatusNew)

	s, err := uc.SuggestOwner(context.Background(), "lead-new")
	require.NoError(t, err)
	assert.Equal(t, "owner-wa", s.OwnerID)
	assert.Equal(t, assignment.SuggestReasonAffinity, s.Reason)
}

// Sin historial en el canal, la sugerencia balancea por carga global.
func TestSuggestOwner_FallbackPorCarga(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-busy", 5, 4)
	seedOwner(store, "owner-free", 5, 1)
	seedLead(store, "lead-1", entity.ChannelWalkIn, entity.StatusNew)

	s, err := uc.SuggestOwner(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-free", s.OwnerID)
	assert.Equal(t, assignment.SuggestReasonLoad, s.Reason)
}

// Todos al tope y sin override: no hay a quién sugerir.
func TestSuggestOwner_SinCupoDisponible(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 2, 2)
	seedLead(store, "lead-1", entity.ChannelWebsite, entity.StatusNew)

	_, err := uc.SuggestOwner(context.Background(), "lead-1")
	assert.ErrorIs(t, err, domain.ErrNoAvailableOwner)
}

// El lote continúa tras fallas individuales: con cupo para 3 de 5, los 3
// primeros entran y los 2 restantes se reportan con su causa.
func TestBulkAssign_FallaParcialNoAbortaElLote(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 3, 0)
	ids := []string{"l1", "l2", "l3", "l4", "l5"}
	for _, id := range ids {
		seedLead(store, id, entity.ChannelFacebook, entity.StatusNew)
	}

	result, err := uc.BulkAssign(context.Background(), ids, "owner-1", "mgr-1", false)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 3)
	require.Len(t, result.Failed, 2)
	for _, f := range result.Failed {
		assert.Equal(t, "capacity_exceeded", f.Reason)
	}
	assert.Equal(t, 3, store.Owners["owner-1"].CurrentLoad)
}

// Un lead inexistente dentro del lote se reporta como not_found sin frenar el resto.
func TestBulkAssign_LeadInexistenteEnElLote(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newEngine(store)
	seedOwner(store, "owner-1", 5, 0)
	seedLead(store, "l1", entity.ChannelWebsite, entity.StatusNew)

	result, err := uc.BulkAssign(context.Background(), []string{"l1", "fantasma"}, "owner-1", "mgr-1", false)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "not_found", result.Failed[0].Reason)
}
