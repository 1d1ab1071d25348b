package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pipeline de leads, en orden de avance.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusFollowup  = "followup"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// Canales de origen de un lead.
const (
	ChannelWebsite  = "Website"
	ChannelFacebook = "Facebook"
	ChannelWhatsApp = "WhatsApp"
	ChannelPhone    = "Phone"
	ChannelWalkIn   = "Walk-in"
	ChannelReferral = "Referral"
)

// Channels lista los canales válidos (para validación de entrada y filtros).
var Channels = []string{
	ChannelWebsite, ChannelFacebook, ChannelWhatsApp,
	ChannelPhone, ChannelWalkIn, ChannelReferral,
}

// Lead representa un prospecto de venta. A lo sumo un asesor asignado a la vez;
// OwnerID es nil hasta la primera asignación. MergedIntoID marca un lead retirado
// por fusión (los datos nunca se borran).
type Lead struct {
	ID         string
	Name       string
	Phone      string
	Email      string
	Channel    string
	Status     string
	OwnerID    *string
	CampaignID *string

	// Perfil comercial (concesionario).
	CarInterest string
	BudgetMin   decimal.Decimal
	BudgetMax   decimal.Decimal
	Timeline    string // ej. "3-6 months"
	Address     string
	Occupation  string

	// Consentimientos y no-molestar.
	DNDSms          bool
	DNDCall         bool
	ConsentWhatsApp bool

	FirstContactAt *time.Time // primer contacto registrado; congela el reloj SLA
	MergedIntoID   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Terminal responde si el lead está en un estado final del pipeline.
func (l *Lead) Terminal() bool {
	return l.Status == StatusWon || l.Status == StatusLost
}

// Assigned responde si el lead tiene asesor asignado.
func (l *Lead) Assigned() bool {
	return l.OwnerID != nil && *l.OwnerID != ""
}

// Merged responde si el lead fue retirado por una fusión de duplicados.
func (l *Lead) Merged() bool {
	return l.MergedIntoID != nil && *l.MergedIntoID != ""
}

// ValidChannel responde si el canal es uno de los conocidos.
func ValidChannel(ch string) bool {
	for _, c := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// ValidStatus responde si el estado pertenece al pipeline.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusFollowup, StatusWon, StatusLost:
		return true
	}
	return false
}
