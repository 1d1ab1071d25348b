package dto

import "github.com/shopspring/decimal"

// FunnelStageDTO conteo de una etapa del embudo.
type FunnelStageDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ChannelMixDTO participación de un canal en el período.
type ChannelMixDTO struct {
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

// AtRiskLeadDTO lead con SLA en riesgo o vencido, para la lista del dashboard.
type AtRiskLeadDTO struct {
	LeadID  string `json:"lead_id"`
	Name    string `json:"name"`
	Channel string `json:"channel"`
	SLA     string `json:"sla"` // atRisk | breached
	OwnerID string `json:"owner_id,omitempty"`
}

// CampaignPerformanceDTO métricas de una campaña para el dashboard.
type CampaignPerformanceDTO struct {
	CampaignID     string          `json:"campaign_id"`
	Name           string          `json:"name"`
	Channel        string          `json:"channel"`
	Budget         decimal.Decimal `json:"budget"`
	Spend          decimal.Decimal `json:"spend"`
	LeadCount      int             `json:"lead_count"`
	WonCount       int             `json:"won_count"`
	CostPerLead    decimal.Decimal `json:"cost_per_lead"`   // Spend / LeadCount (0 si sin leads)
	ConversionRate decimal.Decimal `json:"conversion_rate"` // WonCount / LeadCount en %
}

// DashboardResponse salida de GET /api/analytics/dashboard (solo manager).
type DashboardResponse struct {
	NewLeads         int                      `json:"new_leads"`
	ContactRatePct   decimal.Decimal          `json:"contact_rate_pct"`
	QualificationPct decimal.Decimal          `json:"qualification_rate_pct"`
	WinRatePct       decimal.Decimal          `json:"win_rate_pct"`
	Funnel           []FunnelStageDTO         `json:"funnel"`
	ChannelMix       []ChannelMixDTO          `json:"channel_mix"`
	AtRiskLeads      []AtRiskLeadDTO          `json:"at_risk_leads"`
	TopCampaigns     []CampaignPerformanceDTO `json:"top_campaigns"`
}
