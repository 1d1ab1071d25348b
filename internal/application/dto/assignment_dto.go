package dto

import "time"

// AssignLeadRequest body para POST /api/assignments (solo manager).
type AssignLeadRequest struct {
	LeadID   string `json:"lead_id" validate:"required,uuid"`
	OwnerID  string `json:"owner_id" validate:"required,uuid"`
	Override bool   `json:"override,omitempty"`
}

// BulkAssignRequest body para POST /api/assignments/bulk (solo manager).
// La selección de leads viaja explícita en el payload, nunca como estado ambiente.
type BulkAssignRequest struct {
	LeadIDs       []string `json:"lead_ids" validate:"required,min=1"`
	OwnerID       string   `json:"owner_id" validate:"required,uuid"`
	AllowOverride bool     `json:"allow_override,omitempty"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID           string     `json:"id"`
	LeadID       string     `json:"lead_id"`
	OwnerID      string     `json:"owner_id"`
	Origin       string     `json:"origin"`
	AssignedBy   string     `json:"assigned_by"`
	AssignedAt   time.Time  `json:"assigned_at"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
	// CapacityWarning true cuando la asignación se hizo con override sobre el cupo.
	CapacityWarning bool `json:"capacity_warning,omitempty"`
}

// BatchFailure falla individual dentro de una asignación masiva.
type BatchFailure struct {
	LeadID string `json:"lead_id"`
	Reason string `json:"reason"`
}

// BatchResult resultado de BulkAssign: éxito parcial por ítem, nunca atómico del lote.
type BatchResult struct {
	Succeeded []AssignmentResponse `json:"succeeded"`
	Failed    []BatchFailure       `json:"failed"`
}

// SuggestionResponse salida de GET /api/leads/:id/suggested-owner.
type SuggestionResponse struct {
	LeadID  string `json:"lead_id"`
	OwnerID string `json:"owner_id"`
	// Reason "channel_affinity" o "load_balance".
	Reason string `json:"reason"`
}
