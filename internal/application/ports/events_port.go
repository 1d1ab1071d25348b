package ports

import "context"

// LeadAssignedEvent se publica tras cada asignación confirmada.
// Lo consumen los colaboradores de comunicación y auditoría.
type LeadAssignedEvent struct {
	LeadID          string `json:"lead_id"`
	OwnerID         string `json:"owner_id"`
	PreviousOwnerID string `json:"previous_owner_id,omitempty"`
	Origin          string `json:"origin"`
	AssignedBy      string `json:"assigned_by"`
	CapacityWarning bool   `json:"capacity_warning,omitempty"`
}

// LeadsMergedEvent se publica tras resolver un duplicado con merge.
type LeadsMergedEvent struct {
	SurvivorID string `json:"survivor_id"`
	RetiredID  string `json:"retired_id"`
	ResolvedBy string `json:"resolved_by"`
}

// EventPublisher puerto de publicación de eventos del motor. La implementación
// RabbitMQ vive en infraestructura; un fallo de publicación no revierte el comando.
type EventPublisher interface {
	PublishLeadAssigned(ctx context.Context, ev LeadAssignedEvent) error
	PublishLeadsMerged(ctx context.Context, ev LeadsMergedEvent) error
}

// NopPublisher implementación nula para entornos sin broker configurado.
type NopPublisher struct{}

func (NopPublisher) PublishLeadAssigned(context.Context, LeadAssignedEvent) error { return nil }
func (NopPublisher) PublishLeadsMerged(context.Context, LeadsMergedEvent) error   { return nil }
