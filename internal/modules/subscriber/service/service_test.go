package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/repository"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return New(repo)
}

func TestEnsureDefaultIsIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, created, err := svc.EnsureDefault(ctx, "u1", "Europe/London")
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	if first.Timezone != "Europe/London" {
		t.Fatalf("profile timezone not used: %s", first.Timezone)
	}

	second, created, err := svc.EnsureDefault(ctx, "u1", "Asia/Tokyo")
	if err != nil || created {
		t.Fatalf("expected existing record, got created=%v err=%v", created, err)
	}
	if second.Timezone != "Europe/London" {
		t.Fatalf("existing record must not be reseeded: %s", second.Timezone)
	}
}

func TestUpdateMissingSubscriber(t *testing.T) {
	svc := newService(t)
	_, err := svc.Update(context.Background(), "ghost", func(*domain.Subscriber) error { return nil })
	if !stderrors.Is(err, errors.ErrSubscriberNotFound) {
		t.Fatalf("expected ErrSubscriberNotFound, got %v", err)
	}
}

func TestUpdateRejectsInvalidResult(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, _, err := svc.EnsureDefault(ctx, "u1", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Update(ctx, "u1", func(s *domain.Subscriber) error {
		s.Timezone = "Nowhere/Special"
		return nil
	})
	if !stderrors.Is(err, domain.ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}

	stored, _ := svc.Get(ctx, "u1")
	if stored.Timezone != domain.DefaultTimezone {
		t.Fatalf("invalid update must not be persisted, got %s", stored.Timezone)
	}
}

func TestConcurrentKeywordAddsStopAtLimit(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, _, err := svc.EnsureDefault(ctx, "u1", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", func(s *domain.Subscriber) error {
		s.Keywords = nil
		return nil
	}); err != nil {
		t.Fatalf("clear keywords: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.Update(ctx, "u1", func(s *domain.Subscriber) error {
				return s.AddKeyword(fmt.Sprintf("kw-%02d", i))
			})
		}(i)
	}
	wg.Wait()

	stored, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Keywords) != domain.MaxKeywords {
		t.Fatalf("expected exactly %d keywords, got %d", domain.MaxKeywords, len(stored.Keywords))
	}
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, _, err := svc.EnsureDefault(ctx, "u1", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Update(ctx, "u1", func(s *domain.Subscriber) error {
				s.Enabled = !s.Enabled
				return nil
			})
		}()
	}
	wg.Wait()

	stored, _ := svc.Get(ctx, "u1")
	if !stored.Enabled {
		t.Fatal("an even number of toggles must leave the subscriber enabled")
	}
}
