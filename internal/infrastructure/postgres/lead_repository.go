package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

// leadColumns columnas de la tabla leads en el orden de scanLead.
const leadColumns = `id, name, phone, email, channel, status, owner_id, campaign_id,
	car_interest, budget_min, budget_max, timeline, address, occupation,
	dnd_sms, dnd_call, consent_whatsapp, first_contact_at, merged_into_id,
	created_at, updated_at`

// LeadRepo implementación de LeadRepository sobre PostgreSQL (usable con pool o tx).
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador de leads. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

// Create persiste un lead nuevo junto con sus huellas normalizadas
// (dígitos del teléfono, email plegado, tokens del nombre) para que el
// prefiltro de duplicados compare con la misma normalización del dominio.
func (r *LeadRepo) Create(lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `,
			phone_digits, email_norm, name_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
			$22, $23, $24)`
	_, err := r.q.Exec(context.Background(), query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Channel, lead.Status,
		lead.OwnerID, lead.CampaignID, lead.CarInterest, lead.BudgetMin, lead.BudgetMax,
		lead.Timeline, lead.Address, lead.Occupation,
		lead.DNDSms, lead.DNDCall, lead.ConsentWhatsApp,
		lead.FirstContactAt, lead.MergedIntoID, lead.CreatedAt, lead.UpdatedAt,
		routing.NormalizePhone(lead.Phone), routing.NormalizeEmail(lead.Email), routing.NameTokens(lead.Name),
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID obtiene un lead por ID.
func (r *LeadRepo) GetByID(id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.getOne(query, id, "get lead")
}

// GetForUpdate obtiene el lead y bloquea la fila (SELECT FOR UPDATE).
func (r *LeadRepo) GetForUpdate(id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id, "get lead for update")
}

func (r *LeadRepo) getOne(query, id, op string) (*entity.Lead, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lead, nil
}

// Update actualiza los campos de perfil del lead. El estado, el asesor y las
// marcas de fusión tienen mutadores propios.
func (r *LeadRepo) Update(lead *entity.Lead) error {
	query := `
		UPDATE leads SET name = $2, phone = $3, email = $4,
			car_interest = $5, budget_min = $6, budget_max = $7,
			timeline = $8, address = $9, occupation = $10,
			dnd_sms = $11, dnd_call = $12, consent_whatsapp = $13,
			updated_at = $14,
			phone_digits = $15, email_norm = $16, name_tokens = $17
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		lead.ID, lead.Name, lead.Phone, lead.Email,
		lead.CarInterest, lead.BudgetMin, lead.BudgetMax,
		lead.Timeline, lead.Address, lead.Occupation,
		lead.DNDSms, lead.DNDCall, lead.ConsentWhatsApp,
		lead.UpdatedAt,
		routing.NormalizePhone(lead.Phone), routing.NormalizeEmail(lead.Email), routing.NameTokens(lead.Name),
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return nil
}

// SetStatus fija el estado del pipeline.
func (r *LeadRepo) SetStatus(id, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set lead status: %w", err)
	}
	return nil
}

// SetOwner fija o limpia el asesor vigente.
func (r *LeadRepo) SetOwner(leadID string, ownerID *string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE leads SET owner_id = $2, updated_at = now() WHERE id = $1`, leadID, ownerID)
	if err != nil {
		return fmt.Errorf("set lead owner: %w", err)
	}
	return nil
}

// SetFirstContact fija el primer contacto solo si aún no existe (el reloj SLA
// se congela una sola vez).
func (r *LeadRepo) SetFirstContact(leadID string, at time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE leads SET first_contact_at = $2 WHERE id = $1 AND first_contact_at IS NULL`,
		leadID, at)
	if err != nil {
		return fmt.Errorf("set first contact: %w", err)
	}
	return nil
}

// SetMergedInto marca el lead como retirado por fusión.
func (r *LeadRepo) SetMergedInto(leadID, survivorID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE leads SET merged_into_id = $2, updated_at = now() WHERE id = $1`,
		leadID, survivorID)
	if err != nil {
		return fmt.Errorf("set merged into: %w", err)
	}
	return nil
}

// List lista leads según el filtro, más antiguos primero (la cola de
// asignación atiende por orden de llegada). Excluye leads fusionados.
func (r *LeadRepo) List(filter repository.LeadFilter) ([]*entity.Lead, error) {
	conditions := []string{"merged_into_id IS NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}
	if filter.Channel != "" {
		conditions = append(conditions, "channel = "+arg(filter.Channel))
	}
	if filter.CampaignID != "" {
		conditions = append(conditions, "campaign_id = "+arg(filter.CampaignID))
	}
	if filter.OwnerID != "" {
		conditions = append(conditions, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.Unassigned {
		conditions = append(conditions, "owner_id IS NULL")
	}
	if filter.From != nil {
		conditions = append(conditions, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "created_at <= "+arg(*filter.To))
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at ASC, id ASC`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

// FindSimilar devuelve el corpus de candidatos a comparar: leads no fusionados
// que comparten dígitos de teléfono (últimos 10, tolerando prefijo de país),
// email normalizado o algún token del nombre. Compara contra las huellas
// escritas en Create/Update, con la misma normalización del dominio; el score
// fino lo calcula el dominio.
func (r *LeadRepo) FindSimilar(lead *entity.Lead) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + ` FROM leads
		WHERE id <> $1 AND merged_into_id IS NULL
		  AND (
			($2 <> '' AND right(phone_digits, 10) = right($2, 10))
			OR ($3 <> '' AND email_norm = $3)
			OR name_tokens && $4
		  )
		LIMIT 50`
	rows, err := r.q.Query(context.Background(), query,
		lead.ID,
		routing.NormalizePhone(lead.Phone),
		routing.NormalizeEmail(lead.Email),
		routing.NameTokens(lead.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("find similar leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &l.Email, &l.Channel, &l.Status, &l.OwnerID, &l.CampaignID,
		&l.CarInterest, &l.BudgetMin, &l.BudgetMax, &l.Timeline, &l.Address, &l.Occupation,
		&l.DNDSms, &l.DNDCall, &l.ConsentWhatsApp, &l.FirstContactAt, &l.MergedIntoID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanLeads(rows pgx.Rows) ([]*entity.Lead, error) {
	var out []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}
