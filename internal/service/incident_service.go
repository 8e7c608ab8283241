package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cake-tracker/internal/domain"
	"cake-tracker/internal/events"
	"cake-tracker/internal/logger"
	"cake-tracker/internal/screening"

	"go.uber.org/zap"
)

var (
	ErrPersonNameRequired = errors.New("person_name is required")
	ErrSubmissionInFlight = errors.New("an identical submission is already in progress")
)

// BlockedError is returned when screening rejects a draft. Message is the
// fixed user-facing text.
type BlockedError struct {
	Reason  screening.Reason
	Message string
}

func (e *BlockedError) Error() string { return e.Message }

// Screener is implemented by *screening.Screener.
type Screener interface {
	Screen(ctx context.Context, name, notes string) screening.Verdict
}

// IncidentService 事件录入与状态切换服务
type IncidentService struct {
	lifecycle *IncidentLifecycle
	screener  Screener
	publisher events.Publisher
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewIncidentService(lifecycle *IncidentLifecycle, screener Screener, publisher events.Publisher, logger *zap.Logger) *IncidentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &IncidentService{
		lifecycle: lifecycle,
		screener:  screener,
		publisher: publisher,
		logger:    logger,
		inflight:  map[string]struct{}{},
	}
}

// AddIncidentRequest 新增事件请求
type AddIncidentRequest struct {
	PersonName string `json:"person_name"`
	Notes      string `json:"notes"`
}

func (s *IncidentService) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *IncidentService) end(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// AddIncident screens the draft and, if it passes, persists it.
func (s *IncidentService) AddIncident(ctx context.Context, req AddIncidentRequest) (*domain.Incident, error) {
	name := strings.TrimSpace(req.PersonName)
	notes := strings.TrimSpace(req.Notes)
	if name == "" {
		return nil, ErrPersonNameRequired
	}

	key := name + "\x00" + notes
	if !s.begin(key) {
		return nil, ErrSubmissionInFlight
	}
	defer s.end(key)

	if v := s.screener.Screen(ctx, name, notes); !v.Allowed {
		return nil, &BlockedError{Reason: v.Reason, Message: v.Message}
	}

	inc, err := s.lifecycle.Create(ctx, name, notes)
	if err != nil {
		s.logger.Error("Failed to add incident", zap.String(logger.FieldPersonName, name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Incident recorded", logger.Incident(*inc)...)
	s.publish(ctx, events.NewEvent(events.IncidentCreated, *inc))
	return inc, nil
}

// ToggleDelivered marks an incident delivered or owed again.
func (s *IncidentService) ToggleDelivered(ctx context.Context, id string, delivered bool) (*domain.Incident, error) {
	inc, err := s.lifecycle.ToggleDelivered(ctx, id, delivered)
	if err != nil {
		s.logger.Error("Failed to update incident", zap.String(logger.FieldIncidentID, id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Incident delivery updated", logger.Incident(*inc)...)
	s.publish(ctx, events.DeliveredEvent(*inc))
	return inc, nil
}

// Refresh reloads the list; a failed read keeps the stale list.
func (s *IncidentService) Refresh(ctx context.Context) error {
	if err := s.lifecycle.Refresh(ctx); err != nil {
		s.logger.Error("Failed to fetch incidents", zap.Error(err))
		return err
	}
	return nil
}

func (s *IncidentService) ListIncidents() []domain.Incident {
	return s.lifecycle.Incidents()
}

func (s *IncidentService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish incident event",
			zap.String(logger.FieldEventType, string(e.Type)),
			zap.String(logger.FieldIncidentID, e.Incident.ID),
			zap.Error(err),
		)
	}
}
