package entity

import "time"

// Tipos de actividad sobre un lead.
const (
	ActivityCall     = "call"
	ActivitySms      = "sms"
	ActivityEmail    = "email"
	ActivityWhatsApp = "whatsapp"
	ActivityNote     = "note"
)

// Activity registra una interacción con el lead (llamada, email, WhatsApp, nota).
// La primera actividad de comunicación fija FirstContactAt en el lead (SLA TTF).
// El envío real del mensaje lo hace un colaborador externo; aquí solo queda el rastro.
type Activity struct {
	ID          string
	LeadID      string
	Type        string
	Title       string
	Description string
	UserID      string
	CreatedAt   time.Time
}

// Communication responde si la actividad cuenta como primer contacto para el SLA.
// Las notas internas no contactan al cliente.
func (a *Activity) Communication() bool {
	switch a.Type {
	case ActivityCall, ActivitySms, ActivityEmail, ActivityWhatsApp:
		return true
	}
	return false
}

// ValidActivityType responde si el tipo es uno de los conocidos.
func ValidActivityType(t string) bool {
	return t == ActivityNote || (&Activity{Type: t}).Communication()
}
