package dto

import "time"

// ResolveDuplicateRequest body para POST /api/duplicates/:id/resolve.
type ResolveDuplicateRequest struct {
	Action string `json:"action" validate:"required,oneof=merge ignore"`
}

// DuplicateResponse salida de un candidato a duplicado.
type DuplicateResponse struct {
	ID          string     `json:"id"`
	LeadID      string     `json:"lead_id"`
	DuplicateOf string     `json:"duplicate_of"`
	Score       int        `json:"score"`
	Resolution  string     `json:"resolution"`
	ResolvedBy  *string    `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MergeResultResponse salida de un merge: quién sobrevivió y quién fue retirado.
type MergeResultResponse struct {
	SurvivorID string `json:"survivor_id"`
	RetiredID  string `json:"retired_id"`
}
