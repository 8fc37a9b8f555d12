package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/scheduler/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
)

type memStore struct {
	mu   sync.Mutex
	subs map[string]*subscriberDomain.Subscriber
}

func newMemStore(subs ...*subscriberDomain.Subscriber) *memStore {
	m := &memStore{subs: map[string]*subscriberDomain.Subscriber{}}
	for _, s := range subs {
		m.subs[s.ID] = s
	}
	return m
}

func (m *memStore) Get(_ context.Context, id string) (*subscriberDomain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, errors.ErrSubscriberNotFound
	}
	return s.Clone(), nil
}

func (m *memStore) ListEnabled(_ context.Context) ([]*subscriberDomain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*subscriberDomain.Subscriber
	for _, s := range m.subs {
		if s.Enabled {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memStore) set(s *subscriberDomain.Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.ID] = s
}

// gatedStore holds the first ListEnabled call after taking its snapshot
// until release is closed
type gatedStore struct {
	*memStore
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func newGatedStore(m *memStore) *gatedStore {
	return &gatedStore{memStore: m, listed: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) ListEnabled(ctx context.Context) ([]*subscriberDomain.Subscriber, error) {
	subs, err := g.memStore.ListEnabled(ctx)
	g.once.Do(func() {
		close(g.listed)
		<-g.release
	})
	return subs, err
}

type recordingPusher struct {
	mu    sync.Mutex
	calls []string
	panic bool
}

func (p *recordingPusher) PushToUser(_ context.Context, id string) bool {
	p.mu.Lock()
	p.calls = append(p.calls, id)
	p.mu.Unlock()
	if p.panic {
		panic("analyzer exploded")
	}
	return true
}

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func subscriber(id, tz string, times ...string) *subscriberDomain.Subscriber {
	s := subscriberDomain.NewDefault(id, tz, fixedNow)
	s.DeliveryTimes = times
	return s
}

func newScheduler(store Store, pusher Pusher) *Scheduler {
	return New(store, pusher,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestReloadAllBuildsImageOfEnabledSubscribers(t *testing.T) {
	paused := subscriber("paused", "UTC", "10:00")
	paused.Enabled = false
	store := newMemStore(
		subscriber("alice", "Asia/Shanghai", "09:00", "21:00"),
		subscriber("bob", "Europe/Berlin", "09:00"),
		paused,
	)
	s := newScheduler(store, &recordingPusher{})

	if err := s.ReloadAll(context.Background()); err != nil {
		t.Fatalf("reload all: %v", err)
	}

	jobs := s.Jobs()
	want := []domain.Job{
		{Key: domain.JobKey{SubscriberID: "alice", DeliveryTime: "09:00"}, Trigger: domain.Trigger{Hour: 1}, Timezone: "Asia/Shanghai"},
		{Key: domain.JobKey{SubscriberID: "alice", DeliveryTime: "21:00"}, Trigger: domain.Trigger{Hour: 13}, Timezone: "Asia/Shanghai"},
		{Key: domain.JobKey{SubscriberID: "bob", DeliveryTime: "09:00"}, Trigger: domain.Trigger{Hour: 8}, Timezone: "Europe/Berlin"},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Fatalf("unexpected jobs:\n got %+v\nwant %+v", jobs, want)
	}
	if len(s.cron.Entries()) != 3 {
		t.Fatalf("expected 3 cron entries, got %d", len(s.cron.Entries()))
	}
}

func TestReloadOneIsIdempotent(t *testing.T) {
	store := newMemStore(subscriber("alice", "Asia/Shanghai", "09:00", "18:30"))
	s := newScheduler(store, &recordingPusher{})
	ctx := context.Background()

	if err := s.ReloadOne(ctx, "alice"); err != nil {
		t.Fatalf("first reload: %v", err)
	}
	first := s.JobsFor("alice")

	if err := s.ReloadOne(ctx, "alice"); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	second := s.JobsFor("alice")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reload changed the job set:\n%+v\n%+v", first, second)
	}
	if len(s.cron.Entries()) != 2 {
		t.Fatalf("expected no duplicate cron entries, got %d", len(s.cron.Entries()))
	}
}

func TestReloadOneDisableAndEnable(t *testing.T) {
	alice := subscriber("alice", "Asia/Shanghai", "09:00", "12:00")
	store := newMemStore(alice, subscriber("bob", "UTC", "07:00"))
	s := newScheduler(store, &recordingPusher{})
	ctx := context.Background()

	if err := s.ReloadAll(ctx); err != nil {
		t.Fatalf("reload all: %v", err)
	}

	disabled := alice.Clone()
	disabled.Enabled = false
	store.set(disabled)
	if err := s.ReloadOne(ctx, "alice"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(s.JobsFor("alice")); n != 0 {
		t.Fatalf("disabled subscriber kept %d jobs", n)
	}
	if n := len(s.JobsFor("bob")); n != 1 {
		t.Fatalf("other subscribers must be untouched, bob has %d jobs", n)
	}

	enabled := disabled.Clone()
	enabled.Enabled = true
	enabled.DeliveryTimes = []string{"08:00"}
	store.set(enabled)
	if err := s.ReloadOne(ctx, "alice"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	jobs := s.JobsFor("alice")
	if len(jobs) != 1 || jobs[0].Key.DeliveryTime != "08:00" || jobs[0].Trigger.Hour != 0 {
		t.Fatalf("expected the single current delivery time, got %+v", jobs)
	}
}

func TestReloadOneUnknownSubscriber(t *testing.T) {
	s := newScheduler(newMemStore(), &recordingPusher{})
	if err := s.ReloadOne(context.Background(), "ghost"); err != nil {
		t.Fatalf("unknown subscriber should not be an error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no jobs, got %d", s.Len())
	}
}

func TestMalformedTimeSkipsOnlyThatJob(t *testing.T) {
	store := newMemStore(subscriber("alice", "Asia/Shanghai", "09:00", "99:99", "21:00"))
	s := newScheduler(store, &recordingPusher{})

	if err := s.ReloadOne(context.Background(), "alice"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	jobs := s.JobsFor("alice")
	if len(jobs) != 2 || jobs[0].Key.DeliveryTime != "09:00" || jobs[1].Key.DeliveryTime != "21:00" {
		t.Fatalf("valid siblings must still be scheduled, got %+v", jobs)
	}
}

func TestBadTimezoneSkipsSubscriberJobsOnly(t *testing.T) {
	broken := subscriber("broken", "UTC", "09:00")
	broken.Timezone = "Mars/Base"
	store := newMemStore(broken, subscriber("ok", "UTC", "09:00"))
	s := newScheduler(store, &recordingPusher{})

	if err := s.ReloadAll(context.Background()); err != nil {
		t.Fatalf("reload all: %v", err)
	}
	if len(s.JobsFor("broken")) != 0 || len(s.JobsFor("ok")) != 1 {
		t.Fatalf("unexpected jobs: %+v", s.Jobs())
	}
}

func TestFireSwallowsPanics(t *testing.T) {
	store := newMemStore(subscriber("alice", "UTC", "09:00"))
	pusher := &recordingPusher{panic: true}
	s := newScheduler(store, pusher)
	if err := s.ReloadAll(context.Background()); err != nil {
		t.Fatalf("reload all: %v", err)
	}

	s.Fire("alice")

	if len(pusher.calls) != 1 {
		t.Fatalf("expected one push, got %d", len(pusher.calls))
	}
	if len(s.JobsFor("alice")) != 1 {
		t.Fatal("a failing push must not unregister its job")
	}
}

func TestStartAndStop(t *testing.T) {
	store := newMemStore(subscriber("alice", "UTC", "09:00"))
	s := New(store, &recordingPusher{},
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRefresh("@daily"),
	)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 job after start, got %d", s.Len())
	}
	if next := s.NextRun(domain.JobKey{SubscriberID: "alice", DeliveryTime: "09:00"}); next.IsZero() {
		t.Fatal("running engine should report a next run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestStartRejectsBadRefreshSpec(t *testing.T) {
	s := New(newMemStore(), &recordingPusher{}, WithRefresh("every tuesday"))
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for an invalid refresh spec")
	}
}

func TestReloadAllDoesNotResurrectStaleSnapshot(t *testing.T) {
	alice := subscriber("alice", "Asia/Shanghai", "09:00")
	store := newGatedStore(newMemStore(alice))
	s := newScheduler(store, &recordingPusher{})
	ctx := context.Background()

	allDone := make(chan error, 1)
	go func() { allDone <- s.ReloadAll(ctx) }()
	<-store.listed

	paused := alice.Clone()
	paused.Enabled = false
	store.set(paused)

	oneDone := make(chan error, 1)
	go func() { oneDone <- s.ReloadOne(ctx, "alice") }()

	// give ReloadOne the chance to run ahead of the held listing
	select {
	case err := <-oneDone:
		oneDone <- err
	case <-time.After(50 * time.Millisecond):
	}
	close(store.release)

	if err := <-allDone; err != nil {
		t.Fatalf("reload all: %v", err)
	}
	if err := <-oneDone; err != nil {
		t.Fatalf("reload one: %v", err)
	}

	if jobs := s.JobsFor("alice"); len(jobs) != 0 {
		t.Fatalf("paused subscriber still has live jobs: %+v", jobs)
	}
	if n := len(s.cron.Entries()); n != 0 {
		t.Fatalf("expected no cron entries, got %d", n)
	}
}

func TestConcurrentReloadsMatchStoredConfig(t *testing.T) {
	times := []string{"06:00", "09:00", "12:30", "18:00", "21:45"}
	store := newMemStore()
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%d", i)
		store.set(subscriber(ids[i], "Asia/Shanghai", times[0]))
	}
	s := newScheduler(store, &recordingPusher{})
	ctx := context.Background()

	stop := make(chan struct{})
	var refresher sync.WaitGroup
	refresher.Add(1)
	go func() {
		defer refresher.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if err := s.ReloadAll(ctx); err != nil {
					t.Errorf("reload all: %v", err)
					return
				}
			}
		}
	}()

	var editors sync.WaitGroup
	for n, id := range ids {
		editors.Add(1)
		go func() {
			defer editors.Done()
			for i := range 40 {
				sub := subscriber(id, "Asia/Shanghai", times[(n+i)%len(times)], times[(n+i+2)%len(times)])
				sub.Enabled = (n+i)%3 != 0
				store.set(sub)
				if err := s.ReloadOne(ctx, id); err != nil {
					t.Errorf("reload %s: %v", id, err)
					return
				}
			}
		}()
	}
	editors.Wait()
	close(stop)
	refresher.Wait()

	want := map[domain.JobKey]bool{}
	enabled, _ := store.ListEnabled(ctx)
	for _, sub := range enabled {
		for _, tm := range sub.DeliveryTimes {
			want[domain.JobKey{SubscriberID: sub.ID, DeliveryTime: tm}] = true
		}
	}

	jobs := s.Jobs()
	if len(jobs) != len(want) {
		t.Fatalf("expected %d live jobs, got %d: %+v", len(want), len(jobs), jobs)
	}
	for _, j := range jobs {
		if !want[j.Key] {
			t.Fatalf("live job %s does not match the stored config", j.Key.String())
		}
	}
	if n := len(s.cron.Entries()); n != len(want) {
		t.Fatalf("expected %d cron entries, got %d", len(want), n)
	}
}
