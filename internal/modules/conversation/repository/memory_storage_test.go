package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/domain"
)

func TestUpdateDropsEmptyState(t *testing.T) {
	s := NewMemoryStorage()

	s.Update("u1", func(st *domain.State) {
		st.Input = domain.InputModeWaitingKeyword
		st.InputSince = time.Now()
	})
	if s.Len() != 1 {
		t.Fatalf("expected one live state, got %d", s.Len())
	}

	s.Update("u1", func(st *domain.State) { st.ClearInput() })
	if s.Len() != 0 {
		t.Fatalf("cleared state should be dropped, got %d", s.Len())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemoryStorage()
	s.Update("u1", func(st *domain.State) {
		st.DraftOpen = true
		st.Draft = []string{"zhihu"}
	})

	got := s.Get("u1")
	got.Draft[0] = "weibo"

	if s.Get("u1").Draft[0] != "zhihu" {
		t.Fatal("mutating a returned state must not leak into the store")
	}
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	s := NewMemoryStorage()
	s.Update("u1", func(st *domain.State) { st.DraftOpen = true })

	sources := []string{"zhihu", "weibo", "baidu", "douyin", "toutiao", "tieba"}
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("u1", func(st *domain.State) { st.ToggleDraft(src) })
		}()
	}
	wg.Wait()

	if got := len(s.Get("u1").Draft); got != len(sources) {
		t.Fatalf("expected %d toggled sources, got %d", len(sources), got)
	}
}

func TestWaitingHonoursTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := domain.State{Input: domain.InputModeWaitingTime, InputSince: now.Add(-10 * time.Minute)}

	if !st.Waiting(0, now) {
		t.Fatal("zero ttl never expires")
	}
	if st.Waiting(5*time.Minute, now) {
		t.Fatal("input older than ttl should be expired")
	}
	if !st.Waiting(time.Hour, now) {
		t.Fatal("input within ttl should still be pending")
	}
}
