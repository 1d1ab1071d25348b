package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas agregadas para el dashboard gerencial. Read-only.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analytics. Pasar pool o tx (Querier).
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetFunnelCounts devuelve el conteo de leads por estado, creados en el rango dado.
// Los leads fusionados no cuentan.
func (r *AnalyticsRepo) GetFunnelCounts(ctx context.Context, from, to time.Time) ([]repository.FunnelCountResult, error) {
	query := `
		SELECT status, COUNT(*) FROM leads
		WHERE merged_into_id IS NULL AND created_at >= $1 AND created_at <= $2
		GROUP BY status`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("funnel counts: %w", err)
	}
	defer rows.Close()

	var out []repository.FunnelCountResult
	for rows.Next() {
		var f repository.FunnelCountResult
		if err := rows.Scan(&f.Status, &f.Count); err != nil {
			return nil, fmt.Errorf("scan funnel count: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funnel counts: %w", err)
	}
	return out, nil
}

// GetChannelMix devuelve el conteo de leads por canal, creados en el rango dado.
func (r *AnalyticsRepo) GetChannelMix(ctx context.Context, from, to time.Time) ([]repository.ChannelMixResult, error) {
	query := `
		SELECT channel, COUNT(*) FROM leads
		WHERE merged_into_id IS NULL AND created_at >= $1 AND created_at <= $2
		GROUP BY channel ORDER BY COUNT(*) DESC`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("channel mix: %w", err)
	}
	defer rows.Close()

	var out []repository.ChannelMixResult
	for rows.Next() {
		var m repository.ChannelMixResult
		if err := rows.Scan(&m.Channel, &m.Count); err != nil {
			return nil, fmt.Errorf("scan channel mix: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel mix: %w", err)
	}
	return out, nil
}

// GetCampaignPerformance devuelve las `limit` campañas con más leads en el
// período, con el conteo de ganados para derivar conversión.
func (r *AnalyticsRepo) GetCampaignPerformance(ctx context.Context, from, to time.Time, limit int) ([]repository.CampaignPerformanceResult, error) {
	query := `
		SELECT c.id, c.name, c.channel, c.budget, c.spend,
			COUNT(l.id) AS lead_count,
			COUNT(l.id) FILTER (WHERE l.status = 'won') AS won_count
		FROM campaigns c
		JOIN leads l ON l.campaign_id = c.id AND l.merged_into_id IS NULL
			AND l.created_at >= $1 AND l.created_at <= $2
		GROUP BY c.id, c.name, c.channel, c.budget, c.spend
		ORDER BY lead_count DESC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("campaign performance: %w", err)
	}
	defer rows.Close()

	var out []repository.CampaignPerformanceResult
	for rows.Next() {
		var c repository.CampaignPerformanceResult
		if err := rows.Scan(&c.CampaignID, &c.Name, &c.Channel, &c.Budget, &c.Spend, &c.LeadCount, &c.WonCount); err != nil {
			return nil, fmt.Errorf("scan campaign performance: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign performance: %w", err)
	}
	return out, nil
}
