package service

import (
	"context"
	"errors"
	"sync"

	"cake-tracker/internal/domain"
	"cake-tracker/internal/events"
	"cake-tracker/internal/repository"
	"cake-tracker/internal/screening"
)

var errStoreDown = errors.New("store unavailable")

// flakyRepo wraps the memory repository and fails the operations switched on.
type flakyRepo struct {
	*repository.MemoryIncidentsRepo

	mu         sync.Mutex
	failList   bool
	failCreate bool
	failUpdate bool

	// when set, ListIncidents takes its snapshot, signals listEntered, then
	// waits for listGate; CreateIncident signals createEntered and waits for
	// createGate before inserting
	listEntered   chan struct{}
	listGate      chan struct{}
	createEntered chan struct{}
	createGate    chan struct{}
}

func newFlakyRepo() *flakyRepo {
	return &flakyRepo{MemoryIncidentsRepo: repository.NewMemoryIncidentsRepo()}
}

func (r *flakyRepo) set(list, create, update bool) {
	r.mu.Lock()
	r.failList, r.failCreate, r.failUpdate = list, create, update
	r.mu.Unlock()
}

func (r *flakyRepo) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	r.mu.Lock()
	fail := r.failList
	r.mu.Unlock()
	if fail {
		return nil, &repository.StoreError{Op: "list", Err: errStoreDown}
	}
	list, err := r.MemoryIncidentsRepo.ListIncidents(ctx)
	if r.listGate != nil {
		r.listEntered <- struct{}{}
		<-r.listGate
	}
	return list, err
}

func (r *flakyRepo) CreateIncident(ctx context.Context, personName, notes string) (*domain.Incident, error) {
	r.mu.Lock()
	fail := r.failCreate
	r.mu.Unlock()
	if fail {
		return nil, &repository.StoreError{Op: "insert", Err: errStoreDown}
	}
	if r.createGate != nil {
		r.createEntered <- struct{}{}
		<-r.createGate
	}
	return r.MemoryIncidentsRepo.CreateIncident(ctx, personName, notes)
}

func (r *flakyRepo) SetDelivered(ctx context.Context, id string, delivered bool) error {
	r.mu.Lock()
	fail := r.failUpdate
	r.mu.Unlock()
	if fail {
		return &repository.StoreError{Op: "update", Err: errStoreDown}
	}
	return r.MemoryIncidentsRepo.SetDelivered(ctx, id, delivered)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// stubScreener returns a fixed verdict; when gate is set it blocks until the
// gate is closed so tests can hold a submission in flight.
type stubScreener struct {
	verdict screening.Verdict
	entered chan struct{}
	gate    chan struct{}
}

func (s *stubScreener) Screen(ctx context.Context, _, _ string) screening.Verdict {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
		}
	}
	return s.verdict
}

func allowAll() *stubScreener {
	return &stubScreener{verdict: screening.Verdict{Allowed: true}}
}
