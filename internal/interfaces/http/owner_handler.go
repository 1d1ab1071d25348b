package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/application/dto"
)

// OwnerHandler maneja el registro de asesores (protegido).
type OwnerHandler struct {
	uc *assignment.OwnerRegistryUseCase
}

// NewOwnerHandler construye el handler.
func NewOwnerHandler(uc *assignment.OwnerRegistryUseCase) *OwnerHandler {
	return &OwnerHandler{uc: uc}
}

// Create da de alta un asesor con carga cero.
func (h *OwnerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOwnerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CreateOwner(in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List lista asesores. Con available=true solo los asignables, carga ascendente.
func (h *OwnerHandler) List(c *fiber.Ctx) error {
	if c.QueryBool("available") {
		owners, err := h.uc.ListAvailable()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"total": len(owners), "owners": owners})
	}
	owners, err := h.uc.List(c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(owners), "owners": owners})
}

// GetLoad godoc
// @Summary      Carga actual de un asesor
// @Description  Lectura sin coordinación: el cupo real se verifica al asignar.
// @Tags         owners
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Owner ID"
// @Success      200  {object}  dto.LoadResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/owners/{id}/load [get]
func (h *OwnerHandler) GetLoad(c *fiber.Ctx) error {
	resp, err := h.uc.GetLoad(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// SetAvailability prende o apaga la disponibilidad del asesor.
func (h *OwnerHandler) SetAvailability(c *fiber.Ctx) error {
	var in dto.SetAvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.SetAvailability(c.Params("id"), in.Available); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "disponibilidad actualizada"})
}
