package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/scheduler/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Store is the read side of subscriber configuration the scheduler needs
type Store interface {
	Get(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, error)
	ListEnabled(ctx context.Context) ([]*subscriberDomain.Subscriber, error)
}

// Pusher runs one delivery for a subscriber
type Pusher interface {
	PushToUser(ctx context.Context, subscriberID string) bool
}

type liveJob struct {
	job     domain.Job
	entryID cron.EntryID
}

// Scheduler keeps one cron entry per (subscriber, delivery time) on a UTC
// clock. The live set always mirrors the enabled subscribers' delivery
// times; every reload rebuilds a subscriber's jobs from scratch.
type Scheduler struct {
	cron        *cron.Cron
	store       Store
	pusher      Pusher
	logger      *slog.Logger
	now         func() time.Time
	fireTimeout time.Duration
	refreshSpec string

	mu        sync.Mutex
	jobs      map[domain.JobKey]liveJob
	refreshID cron.EntryID
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithClock replaces the reference clock used to derive triggers
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithFireTimeout bounds a single scheduled push
func WithFireTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.fireTimeout = d
		}
	}
}

// WithRefresh re-derives every trigger on the given cron spec so offsets
// follow daylight-saving changes. An empty spec disables it.
func WithRefresh(spec string) Option {
	return func(s *Scheduler) { s.refreshSpec = spec }
}

// New creates a scheduler; call Start to begin firing
func New(store Store, pusher Pusher, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		pusher:      pusher,
		logger:      slog.Default(),
		now:         time.Now,
		fireTimeout: 5 * time.Minute,
		jobs:        make(map[domain.JobKey]liveJob),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	return s
}

// Start loads every enabled subscriber and starts the trigger engine
func (s *Scheduler) Start(ctx context.Context) error {
	if s.refreshSpec != "" {
		id, err := s.cron.AddFunc(s.refreshSpec, func() {
			if err := s.ReloadAll(context.Background()); err != nil {
				s.logger.Error("Scheduled reload failed", "error", err)
			}
		})
		if err != nil {
			return oops.With("spec", s.refreshSpec, "context", "invalid scheduler refresh spec").Wrap(err)
		}
		s.refreshID = id
	}

	if err := s.ReloadAll(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", "jobs", s.Len())
	return nil
}

// Stop halts the trigger engine and waits for running pushes until ctx ends
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out, abandoning running pushes")
		return ctx.Err()
	}
}

// ReloadAll replaces every subscriber job with ones derived from the
// currently enabled subscribers. The listing is read under the lock so a
// concurrent ReloadOne cannot be overwritten by an older snapshot.
func (s *Scheduler) ReloadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers, err := s.store.ListEnabled(ctx)
	if err != nil {
		return oops.With("context", "failed to list enabled subscribers").Wrap(err)
	}

	for key := range s.jobs {
		s.removeLocked(key)
	}
	for _, sub := range subscribers {
		s.addLocked(sub)
	}

	s.logger.Info("Scheduler reloaded", "subscribers", len(subscribers), "jobs", len(s.jobs))
	return nil
}

// ReloadOne rebuilds the jobs of a single subscriber. A missing or disabled
// subscriber ends up with no jobs.
func (s *Scheduler) ReloadOne(ctx context.Context, subscriberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.jobs {
		if key.SubscriberID == subscriberID {
			s.removeLocked(key)
		}
	}

	sub, err := s.store.Get(ctx, subscriberID)
	if err != nil {
		if stderrors.Is(err, errors.ErrSubscriberNotFound) {
			return nil
		}
		return oops.With("subscriber_id", subscriberID, "context", "failed to load subscriber for reload").Wrap(err)
	}

	if sub.Enabled {
		s.addLocked(sub)
	}

	s.logger.Debug("Subscriber jobs reloaded", "subscriber_id", subscriberID, "enabled", sub.Enabled)
	return nil
}

// Fire runs the push for subscriberID. Failures and panics are logged and
// never escape, and the job stays registered.
func (s *Scheduler) Fire(subscriberID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled push panicked", "subscriber_id", subscriberID, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.fireTimeout)
	defer cancel()

	delivered := s.pusher.PushToUser(ctx, subscriberID)
	s.logger.Info("Scheduled push finished", "subscriber_id", subscriberID, "delivered", delivered)
}

// Jobs returns a snapshot of the live jobs ordered by subscriber and time
func (s *Scheduler) Jobs() []domain.Job {
	s.mu.Lock()
	jobs := lo.MapToSlice(s.jobs, func(_ domain.JobKey, j liveJob) domain.Job { return j.job })
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].Key.SubscriberID != jobs[j].Key.SubscriberID {
			return jobs[i].Key.SubscriberID < jobs[j].Key.SubscriberID
		}
		return jobs[i].Key.DeliveryTime < jobs[j].Key.DeliveryTime
	})
	return jobs
}

// JobsFor returns the live jobs of one subscriber
func (s *Scheduler) JobsFor(subscriberID string) []domain.Job {
	return lo.Filter(s.Jobs(), func(j domain.Job, _ int) bool {
		return j.Key.SubscriberID == subscriberID
	})
}

// Len reports the number of live jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// NextRun reports when a job fires next; zero if the engine is not running
func (s *Scheduler) NextRun(key domain.JobKey) time.Time {
	s.mu.Lock()
	live, ok := s.jobs[key]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(live.entryID).Next
}

// addLocked registers one job per delivery time. A time or timezone that
// cannot be converted skips that job only.
func (s *Scheduler) addLocked(sub *subscriberDomain.Subscriber) {
	now := s.now()
	for _, deliveryTime := range sub.DeliveryTimes {
		key := domain.JobKey{SubscriberID: sub.ID, DeliveryTime: deliveryTime}

		trigger, err := ReferenceTrigger(now, deliveryTime, sub.Timezone)
		if err != nil {
			s.logger.Error("Skipping job with invalid schedule", "job", key.String(), "timezone", sub.Timezone, "error", err)
			continue
		}

		s.removeLocked(key)

		subscriberID := sub.ID
		entryID, err := s.cron.AddFunc(trigger.Spec(), func() { s.Fire(subscriberID) })
		if err != nil {
			s.logger.Error("Failed to register job", "job", key.String(), "spec", trigger.Spec(), "error", err)
			continue
		}

		s.jobs[key] = liveJob{
			job:     domain.Job{Key: key, Trigger: trigger, Timezone: sub.Timezone},
			entryID: entryID,
		}
		s.logger.Debug("Job scheduled", "job", key.String(), "trigger", trigger.String(), "timezone", sub.Timezone)
	}
}

func (s *Scheduler) removeLocked(key domain.JobKey) {
	if live, ok := s.jobs[key]; ok {
		s.cron.Remove(live.entryID)
		delete(s.jobs, key)
	}
}
