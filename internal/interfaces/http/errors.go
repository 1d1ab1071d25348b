package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain"
)

// fail traduce un error de dominio a la respuesta HTTP con código estable.
// Los conflictos de estado (cupo, transición, resolución doble) van en 409;
// un lead fusionado ya no existe como recurso operable y va en 410.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrCapacityExceeded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CAPACITY_EXCEEDED", Message: "el asesor está a tope de cupo"})
	case errors.Is(err, domain.ErrOwnerUnavailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OWNER_UNAVAILABLE", Message: "el asesor no está disponible"})
	case errors.Is(err, domain.ErrNoAvailableOwner):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_AVAILABLE_OWNER", Message: "ningún asesor tiene cupo disponible"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrAlreadyResolved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_RESOLVED", Message: "el candidato ya fue resuelto"})
	case errors.Is(err, domain.ErrLeadMerged):
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Code: "LEAD_MERGED", Message: "el lead fue fusionado en otro"})
	case errors.Is(err, domain.ErrRegistryCorrupted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REGISTRY_CORRUPTED", Message: "carga del asesor inconsistente; requiere reconciliación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
