package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
)

// AssignmentHandler maneja asignaciones vinculantes y sugerencias (protegido).
type AssignmentHandler struct {
	uc *assignment.AssignmentUseCase
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *assignment.AssignmentUseCase) *AssignmentHandler {
	return &AssignmentHandler{uc: uc}
}

// Assign godoc
// @Summary      Asignar un lead a un asesor
// @Description  Solo manager. Con override=true procede sobre el tope de cupo
//
//	y la respuesta trae capacity_warning.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignLeadRequest  true  "lead_id, owner_id, override opcional"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Assign(c.Context(), assignment.AssignInput{
		LeadID:     in.LeadID,
		OwnerID:    in.OwnerID,
		Origin:     entity.AssignmentOriginManual,
		AssignedBy: GetUserID(c),
		Override:   in.Override,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// BulkAssign godoc
// @Summary      Asignación masiva
// @Description  Solo manager. El lote nunca es atómico: cada lead se reporta
//
//	como succeeded o failed con su causa.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkAssignRequest  true  "lead_ids explícitos y owner_id"
// @Success      200   {object}  dto.BatchResult
// @Router       /api/assignments/bulk [post]
func (h *AssignmentHandler) BulkAssign(c *fiber.Ctx) error {
	var in dto.BulkAssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.BulkAssign(c.Context(), in.LeadIDs, in.OwnerID, GetUserID(c), in.AllowOverride)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// Suggest recomienda un asesor para el lead sin comprometer cupo.
func (h *AssignmentHandler) Suggest(c *fiber.Ctx) error {
	resp, err := h.uc.SuggestOwner(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// History devuelve el historial de asignaciones de un lead.
func (h *AssignmentHandler) History(c *fiber.Ctx) error {
	history, err := h.uc.History(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(history), "assignments": history})
}
