package service

import (
	"context"
	stderrors "errors"
	"time"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/repository"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/keylock"
	"github.com/samber/oops"
)

// Service owns subscriber configuration. Every read-modify-write runs under
// a per-subscriber lock so concurrent webhook deliveries cannot lose updates.
type Service struct {
	repo  repository.Repository
	locks *keylock.Locker
	now   func() time.Time
}

// New creates a new subscriber service
func New(repo repository.Repository) *Service {
	return &Service{
		repo:  repo,
		locks: keylock.New(),
		now:   time.Now,
	}
}

// Get retrieves a subscriber; errors.ErrSubscriberNotFound when absent
func (s *Service) Get(ctx context.Context, subscriberID string) (*domain.Subscriber, error) {
	return s.repo.GetSubscriber(ctx, subscriberID)
}

// ListEnabled returns every subscriber with deliveries switched on
func (s *Service) ListEnabled(ctx context.Context) ([]*domain.Subscriber, error) {
	return s.repo.ListEnabled(ctx)
}

// RecentPushLogs returns the latest push attempts, newest first
func (s *Service) RecentPushLogs(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.LogEntry, error) {
	return s.repo.RecentPushLogs(ctx, subscriberID, limit)
}

// EnsureDefault returns the stored subscriber, creating the default seed
// first when none exists. created reports whether a record was written.
func (s *Service) EnsureDefault(ctx context.Context, subscriberID, timezone string) (subscriber *domain.Subscriber, created bool, err error) {
	unlock := s.locks.Lock(subscriberID)
	defer unlock()

	existing, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err == nil {
		return existing, false, nil
	}
	if !stderrors.Is(err, errors.ErrSubscriberNotFound) {
		return nil, false, err
	}

	subscriber = domain.NewDefault(subscriberID, timezone, s.now())
	if err := s.repo.SaveSubscriber(ctx, subscriber); err != nil {
		return nil, false, oops.With("subscriber_id", subscriberID, "context", "failed to create default subscriber").Wrap(err)
	}
	return subscriber, true, nil
}

// Update applies fn to the stored subscriber atomically. If fn or the
// resulting validation fails nothing is written and the error is returned
// unchanged, so callers can match domain errors with errors.Is.
func (s *Service) Update(ctx context.Context, subscriberID string, fn func(*domain.Subscriber) error) (*domain.Subscriber, error) {
	unlock := s.locks.Lock(subscriberID)
	defer unlock()

	current, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	next.UpdatedAt = s.now()
	if err := s.repo.SaveSubscriber(ctx, next); err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to save subscriber").Wrap(err)
	}
	return next, nil
}
