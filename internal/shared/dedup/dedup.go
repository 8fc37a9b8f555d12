// Package dedup remembers recently seen delivery ids so retried webhook
// deliveries are processed once.
package dedup

import (
	"sync"
	"time"
)

// Set is a bounded, time-limited set of ids
type Set struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	seen    map[string]time.Time
	order   []string
	nowFunc func() time.Time
}

// New creates a Set keeping at most max ids for ttl each
func New(ttl time.Duration, max int) *Set {
	if max <= 0 {
		max = 1024
	}
	return &Set{
		ttl:     ttl,
		max:     max,
		seen:    make(map[string]time.Time, max),
		nowFunc: time.Now,
	}
}

// FirstSeen records id and reports whether it was not already present.
// Empty ids are never deduplicated.
func (s *Set) FirstSeen(id string) bool {
	if id == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	s.evict(now)

	if at, ok := s.seen[id]; ok && now.Sub(at) < s.ttl {
		return false
	}

	s.seen[id] = now
	s.order = append(s.order, id)
	return true
}

func (s *Set) evict(now time.Time) {
	drop := 0
	for _, id := range s.order {
		if len(s.order)-drop <= s.max && now.Sub(s.seen[id]) < s.ttl {
			break
		}
		delete(s.seen, id)
		drop++
	}
	if drop > 0 {
		s.order = append(s.order[:0], s.order[drop:]...)
	}
}
