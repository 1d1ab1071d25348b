package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

const assignmentColumns = `id, lead_id, owner_id, origin, assigned_by, assigned_at, superseded_at`

// AssignmentRepo implementación de AssignmentRepository sobre PostgreSQL.
// La tabla es append-only: las asignaciones se cierran, nunca se borran.
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador de asignaciones. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

// Create persiste una asignación nueva.
func (r *AssignmentRepo) Create(a *entity.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.LeadID, a.OwnerID, a.Origin, a.AssignedBy, a.AssignedAt, a.SupersededAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// GetActiveByLead devuelve la asignación vigente del lead, o nil si no hay.
func (r *AssignmentRepo) GetActiveByLead(leadID string) (*entity.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM assignments
		WHERE lead_id = $1 AND superseded_at IS NULL
		ORDER BY assigned_at DESC LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, leadID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active assignment: %w", err)
	}
	return a, nil
}

// Supersede cierra una asignación vigente (fija superseded_at).
func (r *AssignmentRepo) Supersede(assignmentID string, at time.Time) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE assignments SET superseded_at = $2 WHERE id = $1 AND superseded_at IS NULL`,
		assignmentID, at)
	if err != nil {
		return fmt.Errorf("supersede assignment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HistoryByLead devuelve todas las asignaciones del lead, más reciente primero.
func (r *AssignmentRepo) HistoryByLead(leadID string) ([]*entity.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + ` FROM assignments
		WHERE lead_id = $1 ORDER BY assigned_at DESC, id DESC`
	rows, err := r.q.Query(context.Background(), query, leadID)
	if err != nil {
		return nil, fmt.Errorf("assignment history: %w", err)
	}
	defer rows.Close()

	var out []*entity.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}

// TransferHistory reasigna el historial completo de un lead fusionado al superviviente.
func (r *AssignmentRepo) TransferHistory(fromLeadID, toLeadID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE assignments SET lead_id = $2 WHERE lead_id = $1`, fromLeadID, toLeadID)
	if err != nil {
		return fmt.Errorf("transfer assignment history: %w", err)
	}
	return nil
}

func scanAssignment(row pgx.Row) (*entity.Assignment, error) {
	var a entity.Assignment
	err := row.Scan(&a.ID, &a.LeadID, &a.OwnerID, &a.Origin, &a.AssignedBy, &a.AssignedAt, &a.SupersededAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
