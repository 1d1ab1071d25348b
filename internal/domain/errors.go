package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Motor de asignación.
	ErrCapacityExceeded  = errors.New("el asesor está en su capacidad máxima")
	ErrNoAvailableOwner  = errors.New("no hay asesores disponibles")
	ErrOwnerUnavailable  = errors.New("el asesor no está disponible")
	ErrRegistryCorrupted = errors.New("carga del asesor inconsistente, registro congelado")

	// Pipeline de leads.
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrLeadMerged        = errors.New("el lead fue fusionado en otro")

	// Detección de duplicados.
	ErrAlreadyResolved = errors.New("el candidato a duplicado ya fue resuelto")
)
