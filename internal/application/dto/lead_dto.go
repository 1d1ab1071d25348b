package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLeadRequest body para POST /api/leads.
type CreateLeadRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Channel    string `json:"channel" validate:"required"`
	CampaignID string `json:"campaign_id,omitempty"`

	CarInterest string           `json:"car_interest,omitempty"`
	BudgetMin   *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax   *decimal.Decimal `json:"budget_max,omitempty"`
	Timeline    string           `json:"timeline,omitempty"`
	Address     string           `json:"address,omitempty"`
	Occupation  string           `json:"occupation,omitempty"`

	DNDSms          bool `json:"dnd_sms,omitempty"`
	DNDCall         bool `json:"dnd_call,omitempty"`
	ConsentWhatsApp bool `json:"consent_whatsapp,omitempty"`
}

// UpdateLeadRequest body para PATCH /api/leads/:id (campos editables por el asesor dueño).
type UpdateLeadRequest struct {
	Name        *string          `json:"name,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Email       *string          `json:"email,omitempty"`
	CarInterest *string          `json:"car_interest,omitempty"`
	BudgetMin   *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax   *decimal.Decimal `json:"budget_max,omitempty"`
	Timeline    *string          `json:"timeline,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Occupation  *string          `json:"occupation,omitempty"`

	DNDSms          *bool `json:"dnd_sms,omitempty"`
	DNDCall         *bool `json:"dnd_call,omitempty"`
	ConsentWhatsApp *bool `json:"consent_whatsapp,omitempty"`
}

// ChangeStatusRequest body para POST /api/leads/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RegisterActivityRequest body para POST /api/leads/:id/activities.
// El despacho real (llamada, SMS, email, WhatsApp) lo hace un colaborador externo.
type RegisterActivityRequest struct {
	Type        string `json:"type" validate:"required,oneof=call sms email whatsapp note"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
}

// LeadResponse salida de un lead.
type LeadResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email,omitempty"`
	Channel    string  `json:"channel"`
	Status     string  `json:"status"`
	OwnerID    *string `json:"owner_id,omitempty"`
	CampaignID *string `json:"campaign_id,omitempty"`

	CarInterest string          `json:"car_interest,omitempty"`
	BudgetMin   decimal.Decimal `json:"budget_min"`
	BudgetMax   decimal.Decimal `json:"budget_max"`
	Timeline    string          `json:"timeline,omitempty"`
	Address     string          `json:"address,omitempty"`
	Occupation  string          `json:"occupation,omitempty"`

	DNDSms          bool `json:"dnd_sms"`
	DNDCall         bool `json:"dnd_call"`
	ConsentWhatsApp bool `json:"consent_whatsapp"`

	FirstContactAt *time.Time `json:"first_contact_at,omitempty"`
	MergedIntoID   *string    `json:"merged_into_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// SuggestedOwnerID solo se llena en el listado de no asignados.
	SuggestedOwnerID string `json:"suggested_owner_id,omitempty"`
	// SLA clasificación vigente (onTrack | atRisk | breached).
	SLA string `json:"sla,omitempty"`
}

// LeadListResponse listado paginado de leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ActivityResponse salida de una actividad del timeline.
type ActivityResponse struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeadDetailResponse lead + timeline + historial de asignaciones.
type LeadDetailResponse struct {
	Lead        LeadResponse         `json:"lead"`
	Activities  []ActivityResponse   `json:"activities"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// SLAResponse salida de GET /api/leads/:id/sla.
type SLAResponse struct {
	LeadID         string     `json:"lead_id"`
	Channel        string     `json:"channel"`
	State          string     `json:"state"` // onTrack | atRisk | breached
	TargetHours    float64    `json:"target_hours"`
	ElapsedMin     int64      `json:"elapsed_minutes"`
	FirstContactAt *time.Time `json:"first_contact_at,omitempty"`
}
