package service

import (
	"context"
	"sync"

	"cake-tracker/internal/domain"
	"cake-tracker/internal/repository"

	"go.uber.org/zap"
)

// change is a write acknowledged by the store while a refresh was reading.
type change struct {
	created   *domain.Incident
	id        string
	delivered bool
}

// IncidentLifecycle owns the authoritative in-memory incident list.
//
// The list only changes after the store acknowledges a write; there are no
// optimistic updates. Writes for different incidents run concurrently.
// Writes acknowledged while a refresh is reading are journaled and replayed
// on top of the refreshed snapshot, so a refresh never rolls back a newer
// create or toggle.
type IncidentLifecycle struct {
	repo   repository.IncidentsRepository
	logger *zap.Logger

	// refreshMu serializes refreshes only
	refreshMu sync.Mutex

	mu         sync.RWMutex
	incidents  []domain.Incident
	refreshing bool
	journal    []change

	// per-incident locks keep toggles of one row in store order
	idMu    sync.Mutex
	idLocks map[string]*sync.Mutex
}

func NewIncidentLifecycle(repo repository.IncidentsRepository, logger *zap.Logger) *IncidentLifecycle {
	return &IncidentLifecycle{
		repo:      repo,
		logger:    logger,
		incidents: []domain.Incident{},
		idLocks:   map[string]*sync.Mutex{},
	}
}

// Incidents returns a copy of the current list, newest first. Never nil.
func (l *IncidentLifecycle) Incidents() []domain.Incident {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Incident, len(l.incidents))
	copy(out, l.incidents)
	return out
}

// Refresh replaces the list wholesale with the store's contents. On error the
// previous list is kept.
func (l *IncidentLifecycle) Refresh(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	l.mu.Lock()
	l.refreshing = true
	l.journal = nil
	l.mu.Unlock()

	incidents, err := l.repo.ListIncidents(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshing = false
	journal := l.journal
	l.journal = nil
	if err != nil {
		return err
	}

	if incidents == nil {
		incidents = []domain.Incident{}
	}
	for _, c := range journal {
		incidents = applyChange(incidents, c)
	}
	l.incidents = incidents

	l.logger.Debug("Incident list refreshed",
		zap.Int("count", len(incidents)),
		zap.Int("replayed", len(journal)),
	)
	return nil
}

// applyChange applies c to list, which the caller owns.
func applyChange(list []domain.Incident, c change) []domain.Incident {
	if c.created != nil {
		for _, inc := range list {
			if inc.ID == c.created.ID {
				return list
			}
		}
		next := make([]domain.Incident, 0, len(list)+1)
		next = append(next, *c.created)
		return append(next, list...)
	}
	for i := range list {
		if list[i].ID == c.id {
			list[i].CakeDelivered = c.delivered
			break
		}
	}
	return list
}

// record applies an acknowledged write to the list, copy-on-write, and
// journals it for an in-progress refresh.
func (l *IncidentLifecycle) record(c change) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Incident, len(l.incidents))
	copy(next, l.incidents)
	l.incidents = applyChange(next, c)
	if l.refreshing {
		l.journal = append(l.journal, c)
	}
}

func (l *IncidentLifecycle) lockID(id string) func() {
	l.idMu.Lock()
	m, ok := l.idLocks[id]
	if !ok {
		m = &sync.Mutex{}
		l.idLocks[id] = m
	}
	l.idMu.Unlock()

	m.Lock()
	return m.Unlock
}

// Create persists a new incident and prepends the stored row.
func (l *IncidentLifecycle) Create(ctx context.Context, personName, notes string) (*domain.Incident, error) {
	inc, err := l.repo.CreateIncident(ctx, personName, notes)
	if err != nil {
		return nil, err
	}

	stored := *inc
	l.record(change{created: &stored})

	out := *inc
	return &out, nil
}

// ToggleDelivered writes cake_delivered through to the store, then updates
// only the matching local row. The returned incident is the local row after
// the update, or a stub carrying just id and flag when the row is not in the
// list.
func (l *IncidentLifecycle) ToggleDelivered(ctx context.Context, id string, delivered bool) (*domain.Incident, error) {
	unlock := l.lockID(id)
	defer unlock()

	if err := l.repo.SetDelivered(ctx, id, delivered); err != nil {
		return nil, err
	}

	l.record(change{id: id, delivered: delivered})

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, inc := range l.incidents {
		if inc.ID == id {
			out := inc
			return &out, nil
		}
	}
	return &domain.Incident{ID: id, CakeDelivered: delivered}, nil
}
