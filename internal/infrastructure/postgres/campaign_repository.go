package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ repository.CampaignRepository = (*CampaignRepo)(nil)

const campaignColumns = `id, name, channel, budget, spend, active, created_at`

// CampaignRepo implementación de CampaignRepository sobre PostgreSQL.
type CampaignRepo struct {
	q Querier
}

// NewCampaignRepository construye el adaptador de campañas. Pasar pool o tx (Querier).
func NewCampaignRepository(q Querier) *CampaignRepo {
	return &CampaignRepo{q: q}
}

// Create persiste una campaña.
func (r *CampaignRepo) Create(c *entity.Campaign) error {
	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.Name, c.Channel, c.Budget, c.Spend, c.Active, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetByID obtiene una campaña por ID.
func (r *CampaignRepo) GetByID(id string) (*entity.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	var c entity.Campaign
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.Name, &c.Channel, &c.Budget, &c.Spend, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

// ListActive lista las campañas activas.
func (r *CampaignRepo) ListActive() ([]*entity.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE active ORDER BY name ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	defer rows.Close()

	var out []*entity.Campaign
	for rows.Next() {
		var c entity.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Channel, &c.Budget, &c.Spend, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return out, nil
}
