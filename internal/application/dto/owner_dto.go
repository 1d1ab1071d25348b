package dto

import "time"

// CreateOwnerRequest body para POST /api/owners (alta de asesores).
type CreateOwnerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// OwnerResponse salida de un asesor con su carga actual.
type OwnerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Capacity    int       `json:"capacity"`
	CurrentLoad int       `json:"current_load"`
	Available   bool      `json:"available"`
	Frozen      bool      `json:"frozen,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoadResponse salida de GET /api/owners/:id/load.
type LoadResponse struct {
	OwnerID     string `json:"owner_id"`
	CurrentLoad int    `json:"current_load"`
	Capacity    int    `json:"capacity"`
	Available   bool   `json:"available"`
	Frozen      bool   `json:"frozen,omitempty"`
}

// SetAvailabilityRequest body para PATCH /api/owners/:id/availability.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}
