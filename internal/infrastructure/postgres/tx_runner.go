package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/application/duplicate"
	"github.com/drivelead/drivelead-api/internal/application/lead"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ assignment.TxRunner = (*TxRunner)(nil)
var _ lead.TxRunner = (*TxRunner)(nil)
var _ duplicate.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Lo usan el motor de asignación y los cambios de estado del pipeline.
func (r *TxRunner) Run(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	ownerRepo repository.OwnerRepository,
	assignRepo repository.AssignmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	leadRepo := NewLeadRepository(tx)
	ownerRepo := NewOwnerRepository(tx)
	assignRepo := NewAssignmentRepository(tx)

	if err := fn(leadRepo, ownerRepo, assignRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunMerge inicia una transacción con los repos que necesita la fusión de
// duplicados (leads, asesores, asignaciones, candidatos y actividades).
func (r *TxRunner) RunMerge(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	ownerRepo repository.OwnerRepository,
	assignRepo repository.AssignmentRepository,
	dupRepo repository.DuplicateRepository,
	actRepo repository.ActivityRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	leadRepo := NewLeadRepository(tx)
	ownerRepo := NewOwnerRepository(tx)
	assignRepo := NewAssignmentRepository(tx)
	dupRepo := NewDuplicateRepository(tx)
	actRepo := NewActivityRepository(tx)

	if err := fn(leadRepo, ownerRepo, assignRepo, dupRepo, actRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
