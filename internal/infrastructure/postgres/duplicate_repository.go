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

var _ repository.DuplicateRepository = (*DuplicateRepo)(nil)

const duplicateColumns = `id, lead_id, duplicate_of, score, resolution, resolved_by, resolved_at, created_at`

// DuplicateRepo implementación de DuplicateRepository sobre PostgreSQL.
type DuplicateRepo struct {
	q Querier
}

// NewDuplicateRepository construye el adaptador de candidatos a duplicado. Pasar pool o tx (Querier).
func NewDuplicateRepository(q Querier) *DuplicateRepo {
	return &DuplicateRepo{q: q}
}

// Create persiste un candidato nuevo.
func (r *DuplicateRepo) Create(c *entity.DuplicateCandidate) error {
	query := `
		INSERT INTO duplicate_candidates (` + duplicateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.LeadID, c.DuplicateOf, c.Score, c.Resolution, c.ResolvedBy, c.ResolvedAt, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert duplicate candidate: %w", err)
	}
	return nil
}

// GetByID obtiene un candidato por ID.
func (r *DuplicateRepo) GetByID(id string) (*entity.DuplicateCandidate, error) {
	query := `SELECT ` + duplicateColumns + ` FROM duplicate_candidates WHERE id = $1`
	return r.getOne(query, id, "get duplicate candidate")
}

// GetForUpdate obtiene el candidato y bloquea la fila (SELECT FOR UPDATE).
func (r *DuplicateRepo) GetForUpdate(id string) (*entity.DuplicateCandidate, error) {
	query := `SELECT ` + duplicateColumns + ` FROM duplicate_candidates WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id, "get duplicate candidate for update")
}

func (r *DuplicateRepo) getOne(query, id, op string) (*entity.DuplicateCandidate, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	c, err := scanDuplicate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListByLead devuelve los candidatos donde el lead participa por cualquiera de
// los dos lados, score descendente.
func (r *DuplicateRepo) ListByLead(leadID string) ([]*entity.DuplicateCandidate, error) {
	query := `
		SELECT ` + duplicateColumns + ` FROM duplicate_candidates
		WHERE lead_id = $1 OR duplicate_of = $1
		ORDER BY score DESC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list duplicate candidates: %w", err)
	}
	defer rows.Close()

	var out []*entity.DuplicateCandidate
	for rows.Next() {
		c, err := scanDuplicate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan duplicate candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate candidates: %w", err)
	}
	return out, nil
}

// ExistsPair responde si ya hay un candidato para el par, en cualquier orden.
func (r *DuplicateRepo) ExistsPair(leadA, leadB string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM duplicate_candidates
			WHERE (lead_id = $1 AND duplicate_of = $2) OR (lead_id = $2 AND duplicate_of = $1)
		)`, leadA, leadB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists duplicate pair: %w", err)
	}
	return exists, nil
}

// Resolve fija resolución, usuario y momento.
func (r *DuplicateRepo) Resolve(id, resolution, userID string, at time.Time) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE duplicate_candidates
		SET resolution = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1`, id, resolution, userID, at)
	if err != nil {
		return fmt.Errorf("resolve duplicate candidate: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanDuplicate(row pgx.Row) (*entity.DuplicateCandidate, error) {
	var c entity.DuplicateCandidate
	err := row.Scan(&c.ID, &c.LeadID, &c.DuplicateOf, &c.Score, &c.Resolution, &c.ResolvedBy, &c.ResolvedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
