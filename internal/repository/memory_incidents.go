package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cake-tracker/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// MemoryIncidentsRepo backs the service when DB is disabled (local dev, tests).
type MemoryIncidentsRepo struct {
	mu        sync.RWMutex
	incidents map[string]domain.Incident
	lastAt    time.Time
	now       func() time.Time
}

func NewMemoryIncidentsRepo() *MemoryIncidentsRepo {
	return &MemoryIncidentsRepo{
		incidents: map[string]domain.Incident{},
		now:       time.Now,
	}
}

var _ IncidentsRepository = (*MemoryIncidentsRepo)(nil)

// Seed stores incidents as-is, assigning ids and created_at where missing.
func (r *MemoryIncidentsRepo) Seed(incidents ...domain.Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inc := range incidents {
		if inc.ID == "" {
			inc.ID = uuid.NewString()
		}
		if inc.CreatedAt.IsZero() {
			inc.CreatedAt = r.nextCreatedAt()
		} else if inc.CreatedAt.After(r.lastAt) {
			r.lastAt = inc.CreatedAt
		}
		if inc.IncidentDate == "" {
			inc.IncidentDate = inc.CreatedAt.UTC().Format(domain.IncidentDateLayout)
		}
		r.incidents[inc.ID] = inc
	}
}

// nextCreatedAt keeps created_at strictly increasing with insertion order.
func (r *MemoryIncidentsRepo) nextCreatedAt() time.Time {
	t := r.now()
	if !t.After(r.lastAt) {
		t = r.lastAt.Add(time.Microsecond)
	}
	r.lastAt = t
	return t
}

func (r *MemoryIncidentsRepo) sorted() []domain.Incident {
	all := make([]domain.Incident, 0, len(r.incidents))
	for _, inc := range r.incidents {
		all = append(all, inc)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (r *MemoryIncidentsRepo) ListIncidents(_ context.Context) ([]domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sorted()
	for i := range all {
		all[i].Notes = copyNotes(all[i].Notes)
	}
	return all, nil
}

func (r *MemoryIncidentsRepo) CreateIncident(_ context.Context, personName, notes string) (*domain.Incident, error) {
	if personName == "" {
		return nil, storeErr("insert", fmt.Errorf("person_name is required"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.nextCreatedAt()
	inc := domain.Incident{
		ID:           uuid.NewString(),
		PersonName:   personName,
		IncidentDate: createdAt.UTC().Format(domain.IncidentDateLayout),
		CreatedAt:    createdAt,
	}
	if notes != "" {
		inc.Notes = &notes
	}
	r.incidents[inc.ID] = inc

	out := inc
	out.Notes = copyNotes(inc.Notes)
	return &out, nil
}

func (r *MemoryIncidentsRepo) SetDelivered(_ context.Context, id string, delivered bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, ok := r.incidents[id]
	if !ok {
		return storeErr("update", fmt.Errorf("%w: %s", ErrIncidentNotFound, id))
	}
	inc.CakeDelivered = delivered
	r.incidents[id] = inc
	return nil
}

func (r *MemoryIncidentsRepo) SearchNames(_ context.Context, fragment string) ([]string, error) {
	fold := cases.Fold()
	needle := fold.String(fragment)

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := []string{}
	for _, inc := range r.sorted() {
		if strings.Contains(fold.String(inc.PersonName), needle) {
			names = append(names, inc.PersonName)
		}
	}
	return names, nil
}

func copyNotes(n *string) *string {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
