package subscription

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps records in memory. Records are copied on the way in and
// out so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[uuid.UUID]Record, len(records))}
	for _, rec := range records {
		s.records[rec.UserID] = copyRecord(rec)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSubscriptionNotFound
	}

	cp := copyRecord(rec)
	return &cp, nil
}

// Put stores rec, replacing any previous record of the same user.
func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	s.records[rec.UserID] = copyRecord(rec)
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()
}

func copyRecord(rec Record) Record {
	cp := rec
	if rec.TrialEndsAt != nil {
		t := *rec.TrialEndsAt
		cp.TrialEndsAt = &t
	}
	if rec.CanceledAt != nil {
		t := *rec.CanceledAt
		cp.CanceledAt = &t
	}
	return cp
}

// MemoryPlans is an in-memory PlanReader and PlansListSource.
type MemoryPlans struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryPlans validates and stores plans.
func NewMemoryPlans(plans map[string]Plan) (*MemoryPlans, error) {
	if err := ValidatePlans(plans); err != nil {
		return nil, err
	}
	cp := make(map[string]Plan, len(plans))
	for id, p := range plans {
		cp[id] = p.Clone()
	}
	return &MemoryPlans{plans: cp}, nil
}

// Put adds or replaces a plan.
func (m *MemoryPlans) Put(p Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p.Clone()
}

func (m *MemoryPlans) GetPlan(_ context.Context, planID string) (*Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	cp := p.Clone()
	return &cp, nil
}

func (m *MemoryPlans) Load(_ context.Context) (map[string]Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := maps.Clone(m.plans)
	for id, p := range out {
		out[id] = p.Clone()
	}
	return out, nil
}
