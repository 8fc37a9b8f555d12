package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const incompleteConfigText = "⚠️ Your setup is incomplete: a digest needs at least one keyword and one source.\n" +
	"Use /keywords and /sources, or send any message to open the menu."

// Store is the persistence the orchestrator needs
type Store interface {
	GetSubscriber(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, error)
	AppendPushLog(ctx context.Context, entry *domain.LogEntry) error
	SaveDelivered(ctx context.Context, subscriberID string, items []domain.DeliveredItem) error
}

// Analyzer produces a digest for a resolved snapshot. A nil digest with a
// nil error means there was nothing to report.
type Analyzer interface {
	Analyze(ctx context.Context, snap *domain.Snapshot) (*domain.Digest, error)
}

// Sender delivers messages to a subscriber
type Sender interface {
	SendText(ctx context.Context, subscriberID, text string) error
	SendCard(ctx context.Context, subscriberID string, c *card.Card) error
}

// Orchestrator runs the delivery pipeline for one subscriber. Scheduled
// fires and on-demand test pushes share it unchanged.
type Orchestrator struct {
	store          Store
	analyzer       Analyzer
	sender         Sender
	resolver       *Resolver
	analyzeTimeout time.Duration
	sendTimeout    time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// New creates a new push orchestrator
func New(store Store, analyzer Analyzer, sender Sender, resolver *Resolver, analyzeTimeout, sendTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		store:          store,
		analyzer:       analyzer,
		sender:         sender,
		resolver:       resolver,
		analyzeTimeout: lo.Ternary(analyzeTimeout > 0, analyzeTimeout, 2*time.Minute),
		sendTimeout:    lo.Ternary(sendTimeout > 0, sendTimeout, 30*time.Second),
		now:            time.Now,
		logger:         slog.Default(),
	}
}

// SetLogger sets the logger
func (o *Orchestrator) SetLogger(logger *slog.Logger) {
	o.logger = logger
}

// PushToUser runs one delivery and reports whether a digest was delivered
// or there was legitimately nothing to report.
func (o *Orchestrator) PushToUser(ctx context.Context, subscriberID string) bool {
	outcome := o.Push(ctx, subscriberID)
	return outcome == domain.OutcomeDelivered || outcome == domain.OutcomeEmpty
}

// Push runs one delivery and reports how it ended. It never panics past
// this boundary; a panic is recorded as a failed attempt.
func (o *Orchestrator) Push(ctx context.Context, subscriberID string) (outcome domain.Outcome) {
	logger := o.logger.With("subscriber_id", subscriberID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Push panicked", "panic", r)
			o.record(ctx, subscriberID, 0, fmt.Errorf("panic: %v", r))
			outcome = domain.OutcomeFailed
		}
	}()

	sub, err := o.store.GetSubscriber(ctx, subscriberID)
	if err != nil {
		if !stderrors.Is(err, errors.ErrSubscriberNotFound) {
			logger.Error("Failed to load subscriber", "error", err)
		}
		return domain.OutcomeSkipped
	}
	if !sub.Enabled {
		return domain.OutcomeSkipped
	}

	if !sub.IsComplete() {
		if err := o.sendText(ctx, subscriberID, incompleteConfigText); err != nil {
			logger.Warn("Failed to send setup guidance", "error", err)
		}
		return domain.OutcomeIncomplete
	}

	snap, err := o.resolver.Resolve(sub)
	if err != nil {
		logger.Error("Failed to resolve snapshot", "error", err)
		o.record(ctx, subscriberID, 0, err)
		return domain.OutcomeFailed
	}
	defer snap.Release()

	digest, err := o.analyze(ctx, snap)
	if err != nil {
		logger.Error("Analyzer failed", "error", err)
		o.record(ctx, subscriberID, 0, err)
		return domain.OutcomeFailed
	}

	if digest == nil {
		logger.Info("Nothing to report")
		o.record(ctx, subscriberID, 0, nil)
		return domain.OutcomeEmpty
	}

	count := digest.Count()
	at := o.now()
	if err := o.sendCard(ctx, subscriberID, RenderDigest(digest, snap, at)); err != nil {
		logger.Error("Failed to send digest", "count", count, "error", err)
		o.record(ctx, subscriberID, count, oops.With("context", "message send failed").Wrap(err))
		return domain.OutcomeFailed
	}

	o.record(ctx, subscriberID, count, nil)
	o.archive(ctx, subscriberID, digest, at)
	logger.Info("Digest delivered", "count", count)
	return domain.OutcomeDelivered
}

func (o *Orchestrator) analyze(ctx context.Context, snap *domain.Snapshot) (*domain.Digest, error) {
	ctx, cancel := context.WithTimeout(ctx, o.analyzeTimeout)
	defer cancel()
	return o.analyzer.Analyze(ctx, snap)
}

func (o *Orchestrator) sendText(ctx context.Context, subscriberID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, o.sendTimeout)
	defer cancel()
	return o.sender.SendText(ctx, subscriberID, text)
}

func (o *Orchestrator) sendCard(ctx context.Context, subscriberID string, c *card.Card) error {
	ctx, cancel := context.WithTimeout(ctx, o.sendTimeout)
	defer cancel()
	return o.sender.SendCard(ctx, subscriberID, c)
}

// record appends the push log entry; a nil cause means success
func (o *Orchestrator) record(ctx context.Context, subscriberID string, count int, cause error) {
	entry := &domain.LogEntry{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		PushedAt:     o.now(),
		ItemCount:    count,
		Status:       domain.StatusSuccess,
	}
	if cause != nil {
		entry.Status = domain.StatusFailed
		entry.Error = cause.Error()
	}

	if err := o.store.AppendPushLog(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Error("Failed to append push log", "subscriber_id", subscriberID, "status", entry.Status, "error", err)
	}
}

// archive stores delivered items for the subscriber's RSS view
func (o *Orchestrator) archive(ctx context.Context, subscriberID string, d *domain.Digest, at time.Time) {
	items := lo.Map(d.NewItems, func(item domain.Item, _ int) domain.DeliveredItem {
		return domain.DeliveredItem{SubscriberID: subscriberID, Item: item, DeliveredAt: at}
	})
	for keyword, matches := range d.GroupedMatches {
		for _, item := range matches {
			items = append(items, domain.DeliveredItem{SubscriberID: subscriberID, Keyword: keyword, Item: item, DeliveredAt: at})
		}
	}

	if err := o.store.SaveDelivered(context.WithoutCancel(ctx), subscriberID, items); err != nil {
		o.logger.Warn("Failed to archive delivered items", "subscriber_id", subscriberID, "error", err)
	}
}
