package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
)

// Avances normales del pipeline, incluyendo saltos de etapa hacia adelante.
func TestCanTransition_AvanceValido(t *testing.T) {
	casos := [][2]string{
		{entity.StatusNew, entity.StatusContacted},
		{entity.StatusContacted, entity.StatusQualified},
		{entity.StatusQualified, entity.StatusFollowup},
		{entity.StatusFollowup, entity.StatusWon},
		{entity.StatusFollowup, entity.StatusLost},
		{entity.StatusNew, entity.StatusQualified}, // saltar etapas está permitido
		{entity.StatusNew, entity.StatusLost},
	}
	for _, c := range casos {
		assert.NoError(t, routing.CanTransition(c[0], c[1], false), "%s -> %s", c[0], c[1])
	}
}

// Retroceder en el pipeline no está permitido.
func TestCanTransition_RetrocesoInvalido(t *testing.T) {
	casos := [][2]string{
		{entity.StatusContacted, entity.StatusNew},
		{entity.StatusQualified, entity.StatusContacted},
		{entity.StatusFollowup, entity.StatusNew},
	}
	for _, c := range casos {
		err := routing.CanTransition(c[0], c[1], false)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", c[0], c[1])
	}
}

// won y lost son terminales: sin reopen no salen de ahí, ni entre ellos.
func TestCanTransition_TerminalSinReopen(t *testing.T) {
	assert.ErrorIs(t, routing.CanTransition(entity.StatusWon, entity.StatusFollowup, false), domain.ErrInvalidTransition)
	assert.ErrorIs(t, routing.CanTransition(entity.StatusLost, entity.StatusNew, false), domain.ErrInvalidTransition)
	assert.ErrorIs(t, routing.CanTransition(entity.StatusWon, entity.StatusLost, false), domain.ErrInvalidTransition)
}

// Con reopen habilitado un terminal puede volver a un estado activo, pero
// nunca pasar a otro terminal.
func TestCanTransition_ReopenHabilitado(t *testing.T) {
	assert.NoError(t, routing.CanTransition(entity.StatusLost, entity.StatusFollowup, true))
	assert.NoError(t, routing.CanTransition(entity.StatusWon, entity.StatusContacted, true))
	assert.ErrorIs(t, routing.CanTransition(entity.StatusWon, entity.StatusLost, true), domain.ErrInvalidTransition)
}

// Estados desconocidos y sin cambio.
func TestCanTransition_EntradaInvalida(t *testing.T) {
	assert.ErrorIs(t, routing.CanTransition("archived", entity.StatusNew, false), domain.ErrInvalidInput)
	assert.ErrorIs(t, routing.CanTransition(entity.StatusNew, "archived", false), domain.ErrInvalidInput)
	assert.ErrorIs(t, routing.CanTransition(entity.StatusNew, entity.StatusNew, false), domain.ErrInvalidTransition)
}
