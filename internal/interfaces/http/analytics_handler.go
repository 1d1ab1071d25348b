package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/drivelead/drivelead-api/internal/application/analytics"
	"github.com/drivelead/drivelead-api/internal/application/dto"
)

// AnalyticsHandler maneja el dashboard gerencial (solo manager).
type AnalyticsHandler struct {
	uc *analytics.AnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Dashboard gerencial
// @Description  Embudo, mix de canales, tasas, leads con SLA en riesgo y top
//
//	campañas. Período por query from/to (RFC3339); default últimos 30 días.
//
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = t
	}

	resp, err := h.uc.Dashboard(c.Context(), from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}
