package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/drivelead/drivelead-api/internal/application/dto"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
)

// atRiskListMax tope de leads en la lista de atención del dashboard.
const atRiskListMax = 20

// AnalyticsUseCase consultas de lectura para el dashboard gerencial: embudo,
// mix de canales, tasas del período, leads con SLA en riesgo y top campañas.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	leadRepo      repository.LeadRepository
	sla           routing.SLATable
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository, leadRepo repository.LeadRepository, sla routing.SLATable) *AnalyticsUseCase {
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo, leadRepo: leadRepo, sla: sla}
}

// Dashboard arma la vista gerencial para el período [from, to].
// Las tasas se derivan del embudo: contacto = leads que pasaron de "new",
// calificación = leads que llegaron a qualified o más allá, cierre = ganados.
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context, from, to time.Time) (*dto.DashboardResponse, error) {
	funnel, err := uc.analyticsRepo.GetFunnelCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	mix, err := uc.analyticsRepo.GetChannelMix(ctx, from, to)
	if err != nil {
		return nil, err
	}
	campaigns, err := uc.analyticsRepo.GetCampaignPerformance(ctx, from, to, 5)
	if err != nil {
		return nil, err
	}
	atRisk, err := uc.listAtRisk(ctx)
	if err != nil {
		return nil, err
	}

	total, newCount, qualifiedPlus, won := 0, 0, 0, 0
	stages := make([]dto.FunnelStageDTO, 0, len(funnel))
	for _, f := range funnel {
		total += f.Count
		switch f.Status {
		case entity.StatusNew:
			newCount = f.Count
		case entity.StatusQualified, entity.StatusFollowup:
			qualifiedPlus += f.Count
		case entity.StatusWon:
			qualifiedPlus += f.Count
			won = f.Count
		}
		stages = append(stages, dto.FunnelStageDTO{Status: f.Status, Count: f.Count})
	}

	channels := make([]dto.ChannelMixDTO, 0, len(mix))
	for _, m := range mix {
		channels = append(channels, dto.ChannelMixDTO{Channel: m.Channel, Count: m.Count})
	}

	return &dto.DashboardResponse{
		NewLeads:         total,
		ContactRatePct:   ratePct(total-newCount, total),
		QualificationPct: ratePct(qualifiedPlus, total),
		WinRatePct:       ratePct(won, total),
		Funnel:           stages,
		ChannelMix:       channels,
		AtRiskLeads:      atRisk,
		TopCampaigns:     toCampaignDTOs(campaigns),
	}, nil
}

// listAtRisk recorre los leads abiertos sin primer contacto y devuelve los que
// el SLA clasifica atRisk o breached.
func (uc *AnalyticsUseCase) listAtRisk(ctx context.Context) ([]dto.AtRiskLeadDTO, error) {
	leads, err := uc.leadRepo.List(repository.LeadFilter{Limit: 500})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := []dto.AtRiskLeadDTO{}
	for _, lead := range leads {
		if lead.Terminal() || lead.FirstContactAt != nil {
			continue
		}
		state := routing.Classify(lead, now, uc.sla)
		if state == routing.SLAOnTrack {
			continue
		}
		item := dto.AtRiskLeadDTO{
			LeadID:  lead.ID,
			Name:    lead.Name,
			Channel: lead.Channel,
			SLA:     string(state),
		}
		if lead.OwnerID != nil {
			item.OwnerID = *lead.OwnerID
		}
		out = append(out, item)
		if len(out) == atRiskListMax {
			break
		}
	}
	return out, nil
}

func toCampaignDTOs(rows []repository.CampaignPerformanceResult) []dto.CampaignPerformanceDTO {
	out := make([]dto.CampaignPerformanceDTO, 0, len(rows))
	for _, r := range rows {
		d := dto.CampaignPerformanceDTO{
			CampaignID: r.CampaignID,
			Name:       r.Name,
			Channel:    r.Channel,
			Budget:     r.Budget,
			Spend:      r.Spend,
			LeadCount:  r.LeadCount,
			WonCount:   r.WonCount,
		}
		if r.LeadCount > 0 {
			leadCount := decimal.NewFromInt(int64(r.LeadCount))
			d.CostPerLead = r.Spend.DivRound(leadCount, 2)
			d.ConversionRate = decimal.NewFromInt(int64(r.WonCount)).
				Div(leadCount).
				Mul(decimal.NewFromInt(100)).
				Round(1)
		}
		out = append(out, d)
	}
	return out
}

// ratePct devuelve num/den como porcentaje con un decimal; 0 si den es 0.
func ratePct(num, den int) decimal.Decimal {
	if den <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
