package postgres

import (
	"context"
	"fmt"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo implementación de ActivityRepository sobre PostgreSQL.
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador de actividades. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Create persiste una actividad del timeline.
func (r *ActivityRepo) Create(a *entity.Activity) error {
	query := `
		INSERT INTO activities (id, lead_id, type, title, description, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.LeadID, a.Type, a.Title, a.Description, a.UserID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByLead devuelve el timeline del lead, más antigua primero.
func (r *ActivityRepo) ListByLead(leadID string) ([]*entity.Activity, error) {
	query := `
		SELECT id, lead_id, type, title, description, user_id, created_at
		FROM activities WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*entity.Activity
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Title, &a.Description, &a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// TransferHistory mueve las actividades de un lead fusionado al superviviente.
func (r *ActivityRepo) TransferHistory(fromLeadID, toLeadID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE activities SET lead_id = $2 WHERE lead_id = $1`, fromLeadID, toLeadID)
	if err != nil {
		return fmt.Errorf("transfer activity history: %w", err)
	}
	return nil
}
