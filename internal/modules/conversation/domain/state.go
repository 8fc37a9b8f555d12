package domain

import (
	"time"

	"github.com/samber/lo"
)

// State is the transient UI state of one subscriber. It is never persisted.
type State struct {
	Input      InputMode
	InputSince time.Time

	// Draft holds the source selection while the multi-select editor is open
	Draft     []string
	DraftOpen bool
}

// IsZero reports whether the state carries nothing worth keeping
func (s State) IsZero() bool {
	return (s.Input == "" || s.Input == InputModeNone) && !s.DraftOpen
}

// Waiting reports whether a pending input is set and, when ttl is positive,
// not yet expired at now.
func (s State) Waiting(ttl time.Duration, now time.Time) bool {
	if s.Input == "" || s.Input == InputModeNone {
		return false
	}
	return ttl <= 0 || now.Sub(s.InputSince) < ttl
}

// Clone returns a deep copy
func (s State) Clone() State {
	s.Draft = append([]string(nil), s.Draft...)
	return s
}

// ToggleDraft flips source in the open draft
func (s *State) ToggleDraft(source string) {
	if lo.Contains(s.Draft, source) {
		s.Draft = lo.Without(s.Draft, source)
		return
	}
	s.Draft = append(s.Draft, source)
}

// CloseDraft discards the draft
func (s *State) CloseDraft() {
	s.Draft = nil
	s.DraftOpen = false
}

// ClearInput drops any pending input
func (s *State) ClearInput() {
	s.Input = InputModeNone
	s.InputSince = time.Time{}
}
