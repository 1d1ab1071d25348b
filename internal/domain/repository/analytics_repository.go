package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FunnelCountResult conteo de leads por estado del pipeline en un período.
type FunnelCountResult struct {
	Status string
	Count  int
}

// ChannelMixResult conteo de leads por canal de origen en un período.
type ChannelMixResult struct {
	Channel string
	Count   int
}

// CampaignPerformanceResult métricas crudas por campaña.
// Lo produce la DB; el use case lo convierte en DTO.
type CampaignPerformanceResult struct {
	CampaignID string
	Name       string
	Channel    string
	Budget     decimal.Decimal
	Spend      decimal.Decimal
	LeadCount  int
	WonCount   int
}

// AnalyticsRepository define las consultas de lectura para el dashboard gerencial.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetFunnelCounts devuelve el conteo de leads por estado, creados en el rango dado.
	GetFunnelCounts(ctx context.Context, from, to time.Time) ([]FunnelCountResult, error)

	// GetChannelMix devuelve el conteo de leads por canal, creados en el rango dado.
	GetChannelMix(ctx context.Context, from, to time.Time) ([]ChannelMixResult, error)

	// GetCampaignPerformance devuelve las `limit` campañas con más leads en el
	// período, con conteo de ganados para calcular tasa de conversión.
	GetCampaignPerformance(ctx context.Context, from, to time.Time, limit int) ([]CampaignPerformanceResult, error)
}
