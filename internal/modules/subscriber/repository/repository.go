package repository

import (
	"context"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
)

// Repository persists subscriber configuration, the push log and the archive
// of delivered items. GetSubscriber returns errors.ErrSubscriberNotFound for
// unknown ids.
type Repository interface {
	GetSubscriber(ctx context.Context, subscriberID string) (*domain.Subscriber, error)
	SaveSubscriber(ctx context.Context, subscriber *domain.Subscriber) error
	ListEnabled(ctx context.Context) ([]*domain.Subscriber, error)

	AppendPushLog(ctx context.Context, entry *pushDomain.LogEntry) error
	RecentPushLogs(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.LogEntry, error)

	SaveDelivered(ctx context.Context, subscriberID string, items []pushDomain.DeliveredItem) error
	RecentDelivered(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.DeliveredItem, error)

	Close() error
}
