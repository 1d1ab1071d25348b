package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/application/lead"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// LeadHandler maneja las peticiones HTTP del ciclo de vida del lead (protegido).
type LeadHandler struct {
	uc *lead.LeadUseCase
}

// NewLeadHandler construye el handler.
func NewLeadHandler(uc *lead.LeadUseCase) *LeadHandler {
	return &LeadHandler{uc: uc}
}

// Create godoc
// @Summary      Capturar un lead
// @Description  Crea el lead en estado new y corre la detección de duplicados.
// @Tags         leads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLeadRequest  true  "name, phone y channel requeridos"
// @Success      201   {object}  dto.LeadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/leads [post]
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary      Listar leads
// @Description  Filtros: status, channel, campaign_id, owner_id, unassigned, from, to (RFC3339).
//
//	Cada lead sale con su SLA; los no asignados con el asesor sugerido.
//
// @Tags         leads
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LeadListResponse
// @Router       /api/leads [get]
func (h *LeadHandler) List(c *fiber.Ctx) error {
	filter := repository.LeadFilter{
		Status:     c.Query("status"),
		Channel:    c.Query("channel"),
		CampaignID: c.Query("campaign_id"),
		OwnerID:    c.Query("owner_id"),
		Unassigned: c.QueryBool("unassigned"),
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		filter.To = &t
	}

	resp, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// GetByID devuelve el detalle del lead: perfil, timeline y asignaciones.
func (h *LeadHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// Update edita los campos de perfil. Un vendedor solo sobre sus leads.
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLeadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(c.Context(), c.Params("id"), in, GetUserID(c), GetRole(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del pipeline
// @Description  Solo avanza; reabrir un terminal requiere ROUTING_ALLOW_REOPEN.
// @Tags         leads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Lead ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "status destino"
// @Success      200   {object}  dto.LeadResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/leads/{id}/status [post]
func (h *LeadHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.ChangeStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c), GetRole(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// RegisterActivity agrega una actividad al timeline. La primera comunicación
// congela el reloj SLA.
func (h *LeadHandler) RegisterActivity(c *fiber.Ctx) error {
	var in dto.RegisterActivityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.RegisterActivity(c.Context(), c.Params("id"), in, GetUserID(c), GetRole(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetSLA devuelve la clasificación SLA vigente del lead.
func (h *LeadHandler) GetSLA(c *fiber.Ctx) error {
	resp, err := h.uc.GetSLA(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// ListDuplicates devuelve los candidatos a duplicado del lead, score descendente.
func (h *LeadHandler) ListDuplicates(c *fiber.Ctx) error {
	resp, err := h.uc.ListDuplicates(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"total": len(resp), "candidates": resp})
}
