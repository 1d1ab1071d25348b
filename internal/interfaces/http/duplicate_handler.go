package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/application/duplicate"
)

// DuplicateHandler maneja la resolución de candidatos a duplicado (protegido).
type DuplicateHandler struct {
	uc *duplicate.DuplicateUseCase
}

// NewDuplicateHandler construye el handler.
func NewDuplicateHandler(uc *duplicate.DuplicateUseCase) *DuplicateHandler {
	return &DuplicateHandler{uc: uc}
}

// Resolve godoc
// @Summary      Resolver un candidato a duplicado
// @Description  action=merge fusiona (sobrevive el lead más antiguo);
//
//	action=ignore descarta. La resolución es terminal.
//
// @Tags         duplicates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Candidate ID"
// @Param        body  body  dto.ResolveDuplicateRequest  true  "action: merge | ignore"
// @Success      200   {object}  dto.MergeResultResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/duplicates/{id}/resolve [post]
func (h *DuplicateHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveDuplicateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Resolve(c.Context(), c.Params("id"), in.Action, GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if result == nil {
		return c.JSON(fiber.Map{"message": "candidato descartado"})
	}
	return c.JSON(result)
}
