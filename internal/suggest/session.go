package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"cake-tracker/internal/domain"

	"go.uber.org/zap"
)

// Suggester is satisfied by *Lookup.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]domain.NameSuggestion, error)
}

// Session is the state of one name input field.
//
// A query is issued only while the field is focused and only after the
// debounce window has passed without another keystroke. Every keystroke,
// blur and selection advances a sequence token; a response is applied only
// when its token is still current and the field is still focused, so a slow
// or outdated response can never repopulate the list.
type Session struct {
	lookup   Suggester
	debounce time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	focused     bool
	closed      bool
	value       string
	seq         uint64
	timer       *time.Timer
	cancel      context.CancelFunc
	suggestions []domain.NameSuggestion
	settled     chan struct{}

	wg sync.WaitGroup
}

func NewSession(lookup Suggester, debounce time.Duration, logger *zap.Logger) *Session {
	return &Session{
		lookup:   lookup,
		debounce: debounce,
		logger:   logger,
		settled:  make(chan struct{}, 1),
	}
}

// Settled receives after a current lookup completes, whether or not it
// produced suggestions. Stale responses do not signal.
func (s *Session) Settled() <-chan struct{} { return s.settled }

func (s *Session) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.focused = true
	}
}

// Blur drops the pending query, cancels the in-flight one and clears suggestions.
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
	s.focused = false
	s.suggestions = nil
}

// Input records a keystroke and restarts the debounce window.
func (s *Session) Input(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.invalidateLocked()
	if !s.focused || s.closed {
		return
	}
	if strings.TrimSpace(value) == "" {
		s.suggestions = nil
		return
	}

	seq := s.seq
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.fire(seq)
	})
}

// Select takes a suggestion: the value is replaced and the list cleared
// immediately, without a lookup.
func (s *Session) Select(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = name
	s.invalidateLocked()
	s.suggestions = nil
}

func (s *Session) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Session) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

func (s *Session) Suggestions() []domain.NameSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.NameSuggestion(nil), s.suggestions...)
}

// Close blurs the field and waits for any running lookup to return.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.invalidateLocked()
	s.focused = false
	s.suggestions = nil
	s.mu.Unlock()

	s.wg.Wait()
}

// invalidateLocked makes every outstanding query stale.
func (s *Session) invalidateLocked() {
	s.seq++
	if s.timer != nil {
		if s.timer.Stop() {
			s.wg.Done()
		}
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || !s.focused || s.closed {
		s.mu.Unlock()
		return
	}
	query := strings.TrimSpace(s.value)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = nil
	s.mu.Unlock()

	res, err := s.lookup.Suggest(ctx, query)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || !s.focused {
		s.logger.Debug("Discarding stale suggestions", zap.String("query", query))
		return
	}
	s.cancel = nil
	defer func() {
		select {
		case s.settled <- struct{}{}:
		default:
		}
	}()
	if err != nil {
		s.logger.Debug("Suggestion lookup failed", zap.String("query", query), zap.Error(err))
		return
	}
	s.suggestions = res
}
