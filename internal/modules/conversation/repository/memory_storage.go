package repository

import (
	"sync"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/domain"
)

// MemoryStorage implements Repository in process memory. State is lost on
// restart.
type MemoryStorage struct {
	mu     sync.Mutex
	states map[string]domain.State
}

// NewMemoryStorage creates an empty conversation store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[string]domain.State)}
}

func (s *MemoryStorage) Get(subscriberID string) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.states[subscriberID].Clone()
}

func (s *MemoryStorage) Update(subscriberID string, fn func(*domain.State)) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.states[subscriberID].Clone()
	fn(&state)
	if state.IsZero() {
		delete(s.states, subscriberID)
	} else {
		s.states[subscriberID] = state
	}
	return state.Clone()
}

func (s *MemoryStorage) Clear(subscriberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, subscriberID)
}

// Len returns the number of subscribers with live state
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.states)
}
