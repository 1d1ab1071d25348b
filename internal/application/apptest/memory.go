// Package apptest provee repositorios en memoria y dobles de prueba para los
// casos de uso. Solo se usa desde tests; no toca la base de datos.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/drivelead/drivelead-api/internal/application/ports"
	"github.com/drivelead/drivelead-api/internal/domain"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/repository"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	Leads       map[string]*entity.Lead
	Owners      map[string]*entity.Owner
	Assignments []*entity.Assignment
	Duplicates  map[string]*entity.DuplicateCandidate
	Activities  []*entity.Activity
	Users       map[string]*entity.User
	Campaigns   map[string]*entity.Campaign
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		Leads:      map[string]*entity.Lead{},
		Owners:     map[string]*entity.Owner{},
		Duplicates: map[string]*entity.DuplicateCandidate{},
		Users:      map[string]*entity.User{},
		Campaigns:  map[string]*entity.Campaign{},
	}
}

// Repos acceso a los puertos sobre este Store.
func (s *Store) LeadRepo() repository.LeadRepository             { return &leadRepo{s} }
func (s *Store) OwnerRepo() repository.OwnerRepository           { return &ownerRepo{s} }
func (s *Store) AssignmentRepo() repository.AssignmentRepository { return &assignmentRepo{s} }
func (s *Store) DuplicateRepo() repository.DuplicateRepository   { return &duplicateRepo{s} }
func (s *Store) ActivityRepo() repository.ActivityRepository     { return &activityRepo{s} }
func (s *Store) UserRepo() repository.UserRepository             { return &userRepo{s} }
func (s *Store) CampaignRepo() repository.CampaignRepository     { return &campaignRepo{s} }

// TxRunner devuelve un runner que ejecuta el callback directo sobre el Store
// (sin rollback: los tests no dependen de reversas a mitad de camino).
func (s *Store) TxRunner() *MemTxRunner { return &MemTxRunner{s: s} }

// MemTxRunner implementa los TxRunner de assignment/lead y duplicate.
type MemTxRunner struct {
	s *Store
}

func (t *MemTxRunner) Run(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	ownerRepo repository.OwnerRepository,
	assignRepo repository.AssignmentRepository,
) error) error {
	return fn(t.s.LeadRepo(), t.s.OwnerRepo(), t.s.AssignmentRepo())
}

func (t *MemTxRunner) RunMerge(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	ownerRepo repository.OwnerRepository,
	assignRepo repository.AssignmentRepository,
	dupRepo repository.DuplicateRepository,
	actRepo repository.ActivityRepository,
) error) error {
	return fn(t.s.LeadRepo(), t.s.OwnerRepo(), t.s.AssignmentRepo(), t.s.DuplicateRepo(), t.s.ActivityRepo())
}

// EventRecorder implementación de ports.EventPublisher que acumula eventos.
type EventRecorder struct {
	mu       sync.Mutex
	Assigned []ports.LeadAssignedEvent
	Merged   []ports.LeadsMergedEvent
}

func (r *EventRecorder) PublishLeadAssigned(_ context.Context, ev ports.LeadAssignedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Assigned = append(r.Assigned, ev)
	return nil
}

func (r *EventRecorder) PublishLeadsMerged(_ context.Context, ev ports.LeadsMergedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Merged = append(r.Merged, ev)
	return nil
}

// ── LeadRepository ────────────────────────────────────────────────────────────

type leadRepo struct{ s *Store }

func (r *leadRepo) Create(lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Leads[lead.ID] = lead
	return nil
}

func (r *leadRepo) GetByID(id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.Leads[id], nil
}

func (r *leadRepo) GetForUpdate(id string) (*entity.Lead, error) { return r.GetByID(id) }

func (r *leadRepo) Update(lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Leads[lead.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Leads[lead.ID] = lead
	return nil
}

func (r *leadRepo) SetStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lead, ok := r.s.Leads[id]
	if !ok {
		return domain.ErrNotFound
	}
	lead.Status = status
	lead.UpdatedAt = time.Now()
	return nil
}

func (r *leadRepo) SetOwner(leadID string, ownerID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lead, ok := r.s.Leads[leadID]
	if !ok {
		return domain.ErrNotFound
	}
	lead.OwnerID = ownerID
	lead.UpdatedAt = time.Now()
	return nil
}

func (r *leadRepo) SetFirstContact(leadID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lead, ok := r.s.Leads[leadID]
	if !ok {
		return domain.ErrNotFound
	}
	if lead.FirstContactAt == nil {
		lead.FirstContactAt = &at
	}
	return nil
}

func (r *leadRepo) SetMergedInto(leadID, survivorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lead, ok := r.s.Leads[leadID]
	if !ok {
		return domain.ErrNotFound
	}
	lead.MergedIntoID = &survivorID
	return nil
}

func (r *leadRepo) List(filter repository.LeadFilter) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lead
	for _, lead := range r.s.Leads {
		if lead.Merged() {
			continue
		}
		if filter.Unassigned && lead.Assigned() {
			continue
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.Channel != "" && lead.Channel != filter.Channel {
			continue
		}
		if filter.CampaignID != "" && (lead.CampaignID == nil || *lead.CampaignID != filter.CampaignID) {
			continue
		}
		if filter.OwnerID != "" && (lead.OwnerID == nil || *lead.OwnerID != filter.OwnerID) {
			continue
		}
		if filter.From != nil && lead.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && lead.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *leadRepo) FindSimilar(lead *entity.Lead) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lead
	for _, other := range r.s.Leads {
		if other.ID == lead.ID || other.Merged() {
			continue
		}
		out = append(out, other)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── OwnerRepository ───────────────────────────────────────────────────────────

type ownerRepo struct{ s *Store }

func (r *ownerRepo) Create(owner *entity.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Owners[owner.ID] = owner
	return nil
}

func (r *ownerRepo) GetByID(id string) (*entity.Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.Owners[id], nil
}

func (r *ownerRepo) GetForUpdate(id string) (*entity.Owner, error) { return r.GetByID(id) }

func (r *ownerRepo) Update(owner *entity.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Owners[owner.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Owners[owner.ID] = owner
	return nil
}

func (r *ownerRepo) List(limit, offset int) ([]*entity.Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Owner
	for _, o := range r.s.Owners {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ownerRepo) ListAvailable() ([]*entity.Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Owner
	for _, o := range r.s.Owners {
		if o.Available && !o.Frozen {
			out = append(out, o)
		}
	}
	sortByLoad(out)
	return out, nil
}

func (r *ownerRepo) ListByChannelAffinity(channel string) ([]*entity.Owner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	withHistory := map[string]bool{}
	for _, a := range r.s.Assignments {
		if lead, ok := r.s.Leads[a.LeadID]; ok && lead.Channel == channel {
			withHistory[a.OwnerID] = true
		}
	}
	var out []*entity.Owner
	for id := range withHistory {
		if o, ok := r.s.Owners[id]; ok && o.Available && !o.Frozen {
			out = append(out, o)
		}
	}
	sortByLoad(out)
	return out, nil
}

func sortByLoad(owners []*entity.Owner) {
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].CurrentLoad != owners[j].CurrentLoad {
			return owners[i].CurrentLoad < owners[j].CurrentLoad
		}
		return owners[i].ID < owners[j].ID
	})
}

func (r *ownerRepo) ReserveSlot(id string, override bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.Owners[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !o.Available || o.Frozen {
		return false, domain.ErrOwnerUnavailable
	}
	if o.CurrentLoad >= o.Capacity {
		if !override {
			return false, domain.ErrCapacityExceeded
		}
		o.CurrentLoad++
		return true, nil
	}
	o.CurrentLoad++
	return false, nil
}

func (r *ownerRepo) ReleaseSlot(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.Owners[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.CurrentLoad <= 0 {
		o.Frozen = true
		return domain.ErrRegistryCorrupted
	}
	o.CurrentLoad--
	return nil
}

func (r *ownerRepo) Freeze(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.Owners[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Frozen = true
	return nil
}

func (r *ownerRepo) SetAvailability(id string, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.Owners[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Available = available
	return nil
}

// ── AssignmentRepository ──────────────────────────────────────────────────────

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Create(a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Assignments = append(r.s.Assignments, a)
	return nil
}

func (r *assignmentRepo) GetActiveByLead(leadID string) (*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.Assignments) - 1; i >= 0; i-- {
		a := r.s.Assignments[i]
		if a.LeadID == leadID && a.Active() {
			return a, nil
		}
	}
	return nil, nil
}

func (r *assignmentRepo) Supersede(assignmentID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Assignments {
		if a.ID == assignmentID {
			t := at
			a.SupersededAt = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *assignmentRepo) HistoryByLead(leadID string) ([]*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Assignment
	for i := len(r.s.Assignments) - 1; i >= 0; i-- {
		if r.s.Assignments[i].LeadID == leadID {
			out = append(out, r.s.Assignments[i])
		}
	}
	return out, nil
}

func (r *assignmentRepo) TransferHistory(fromLeadID, toLeadID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Assignments {
		if a.LeadID == fromLeadID {
			a.LeadID = toLeadID
		}
	}
	return nil
}

// ── DuplicateRepository ───────────────────────────────────────────────────────

type duplicateRepo struct{ s *Store }

func (r *duplicateRepo) Create(c *entity.DuplicateCandidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Duplicates[c.ID] = c
	return nil
}

func (r *duplicateRepo) GetByID(id string) (*entity.DuplicateCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.Duplicates[id], nil
}

func (r *duplicateRepo) GetForUpdate(id string) (*entity.DuplicateCandidate, error) {
	return r.GetByID(id)
}

func (r *duplicateRepo) ListByLead(leadID string) ([]*entity.DuplicateCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DuplicateCandidate
	for _, c := range r.s.Duplicates {
		if c.LeadID == leadID || c.DuplicateOf == leadID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *duplicateRepo) ExistsPair(leadA, leadB string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Duplicates {
		if (c.LeadID == leadA && c.DuplicateOf == leadB) || (c.LeadID == leadB && c.DuplicateOf == leadA) {
			return true, nil
		}
	}
	return false, nil
}

func (r *duplicateRepo) Resolve(id, resolution, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Duplicates[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Resolution = resolution
	c.ResolvedBy = &userID
	t := at
	c.ResolvedAt = &t
	return nil
}

// ── ActivityRepository ────────────────────────────────────────────────────────

type activityRepo struct{ s *Store }

func (r *activityRepo) Create(a *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Activities = append(r.s.Activities, a)
	return nil
}

func (r *activityRepo) ListByLead(leadID string) ([]*entity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Activity
	for _, a := range r.s.Activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *activityRepo) TransferHistory(fromLeadID, toLeadID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Activities {
		if a.LeadID == fromLeadID {
			a.LeadID = toLeadID
		}
	}
	return nil
}

// ── UserRepository ────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r *userRepo) Create(user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Users[user.ID] = user
	return nil
}

func (r *userRepo) GetByID(id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.Users[id], nil
}

func (r *userRepo) FindByEmail(email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Users[user.ID] = user
	return nil
}

// ── CampaignRepository ────────────────────────────────────────────────────────

type campaignRepo struct{ s *Store }

func (r *campaignRepo) Create(c *entity.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Campaigns[c.ID] = c
	return nil
}

func (r *campaignRepo) GetByID(id string) (*entity.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.Campaigns[id], nil
}

func (r *campaignRepo) ListActive() ([]*entity.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Campaign
	for _, c := range r.s.Campaigns {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
