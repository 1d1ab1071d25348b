package repository

import "github.com/drivelead/drivelead-api/internal/domain/entity"

// ActivityRepository define el puerto de persistencia para Activity.
type ActivityRepository interface {
	Create(a *entity.Activity) error
	// ListByLead devuelve las actividades del lead, más antigua primero (timeline).
	ListByLead(leadID string) ([]*entity.Activity, error)
	// TransferHistory mueve las actividades de un lead fusionado al superviviente.
	TransferHistory(fromLeadID, toLeadID string) error
}
