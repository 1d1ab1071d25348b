package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ repository.OwnerRepository = (*OwnerRepo)(nil)

const ownerColumns = `id, name, email, capacity, current_load, available, frozen, created_at, updated_at`

// OwnerRepo implementación de OwnerRepository sobre PostgreSQL (usable con pool o tx).
// current_load se muta SOLO vía ReserveSlot/ReleaseSlot: son UPDATEs atómicos
// condicionados, así el contador nunca depende de un read-modify-write en Go.
type OwnerRepo struct {
	q Querier
}

// NewOwnerRepository construye el adaptador de asesores. Pasar pool o tx (Querier).
func NewOwnerRepository(q Querier) *OwnerRepo {
	return &OwnerRepo{q: q}
}

// Create persiste un asesor nuevo.
func (r *OwnerRepo) Create(owner *entity.Owner) error {
	query := `
		INSERT INTO owners (` + ownerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		owner.ID, owner.Name, owner.Email, owner.Capacity, owner.CurrentLoad,
		owner.Available, owner.Frozen, owner.CreatedAt, owner.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert owner: %w", err)
	}
	return nil
}

// GetByID obtiene un asesor por ID.
func (r *OwnerRepo) GetByID(id string) (*entity.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1`
	return r.getOne(query, id, "get owner")
}

// GetForUpdate obtiene el asesor y bloquea la fila (SELECT FOR UPDATE).
func (r *OwnerRepo) GetForUpdate(id string) (*entity.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id, "get owner for update")
}

func (r *OwnerRepo) getOne(query, id, op string) (*entity.Owner, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	owner, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return owner, nil
}

// Update actualiza nombre, email y capacidad. current_load no se toca aquí.
func (r *OwnerRepo) Update(owner *entity.Owner) error {
	query := `
		UPDATE owners SET name = $2, email = $3, capacity = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, owner.ID, owner.Name, owner.Email, owner.Capacity)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	return nil
}

// List lista asesores paginados.
func (r *OwnerRepo) List(limit, offset int) ([]*entity.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners ORDER BY name ASC, id ASC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()
	return scanOwners(rows)
}

// ListAvailable lista asesores disponibles y no congelados, carga ascendente.
func (r *OwnerRepo) ListAvailable() ([]*entity.Owner, error) {
	query := `
		SELECT ` + ownerColumns + ` FROM owners
		WHERE available AND NOT frozen
		ORDER BY current_load ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list available owners: %w", err)
	}
	defer rows.Close()
	return scanOwners(rows)
}

// ListByChannelAffinity lista asesores disponibles con historial de
// asignaciones en el canal dado, carga ascendente.
func (r *OwnerRepo) ListByChannelAffinity(channel string) ([]*entity.Owner, error) {
	query := `
		SELECT ` + ownerColumns + ` FROM owners o
		WHERE o.available AND NOT o.frozen
		  AND EXISTS (
			SELECT 1 FROM assignments a
			JOIN leads l ON l.id = a.lead_id
			WHERE a.owner_id = o.id AND l.channel = $1
		  )
		ORDER BY o.current_load ASC, o.id ASC`
	rows, err := r.q.Query(context.Background(), query, channel)
	if err != nil {
		return nil, fmt.Errorf("list owners by channel: %w", err)
	}
	defer rows.Close()
	return scanOwners(rows)
}

// ReserveSlot incrementa current_load de forma atómica. Sin override el UPDATE
// exige cupo libre y falla cerrado con ErrCapacityExceeded; con override
// incrementa igual y devuelve warning=true si quedó sobre el tope.
func (r *OwnerRepo) ReserveSlot(id string, override bool) (bool, error) {
	ctx := context.Background()
	if override {
		var load, capacity int
		err := r.q.QueryRow(ctx, `
			UPDATE owners SET current_load = current_load + 1, updated_at = now()
			WHERE id = $1 AND available AND NOT frozen
			RETURNING current_load, capacity`, id).Scan(&load, &capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, r.reserveFailure(id)
			}
			return false, fmt.Errorf("reserve slot override: %w", err)
		}
		return load > capacity, nil
	}

	cmd, err := r.q.Exec(ctx, `
		UPDATE owners SET current_load = current_load + 1, updated_at = now()
		WHERE id = $1 AND available AND NOT frozen AND current_load < capacity`, id)
	if err != nil {
		return false, fmt.Errorf("reserve slot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return false, r.reserveFailure(id)
	}
	return false, nil
}

// reserveFailure traduce un UPDATE sin filas afectadas al error de dominio concreto.
func (r *OwnerRepo) reserveFailure(id string) error {
	owner, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if owner == nil {
		return domain.ErrNotFound
	}
	if !owner.Available || owner.Frozen {
		return domain.ErrOwnerUnavailable
	}
	return domain.ErrCapacityExceeded
}

// ReleaseSlot decrementa current_load de forma atómica. Un decremento que
// dejaría la carga negativa congela al asesor y devuelve ErrRegistryCorrupted:
// el contador está roto y exige reconciliación manual.
func (r *OwnerRepo) ReleaseSlot(id string) error {
	ctx := context.Background()
	cmd, err := r.q.Exec(ctx, `
		UPDATE owners SET current_load = current_load - 1, updated_at = now()
		WHERE id = $1 AND current_load > 0`, id)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		owner, err := r.GetByID(id)
		if err != nil {
			return err
		}
		if owner == nil {
			return domain.ErrNotFound
		}
		if err := r.Freeze(id); err != nil {
			return err
		}
		return domain.ErrRegistryCorrupted
	}
	return nil
}

// Freeze marca al asesor como congelado.
func (r *OwnerRepo) Freeze(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE owners SET frozen = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("freeze owner: %w", err)
	}
	return nil
}

// SetAvailability fija la disponibilidad del asesor.
func (r *OwnerRepo) SetAvailability(id string, available bool) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE owners SET available = $2, updated_at = now() WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("set owner availability: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOwner(row pgx.Row) (*entity.Owner, error) {
	var o entity.Owner
	err := row.Scan(
		&o.ID, &o.Name, &o.Email, &o.Capacity, &o.CurrentLoad,
		&o.Available, &o.Frozen, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOwners(rows pgx.Rows) ([]*entity.Owner, error) {
	var out []*entity.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return out, nil
}
