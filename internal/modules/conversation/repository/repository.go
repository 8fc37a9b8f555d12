package repository

import (
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/domain"
)

// Repository holds per-subscriber conversation state. Update runs fn
// atomically; fn must not block since it may hold a store-wide lock.
type Repository interface {
	Get(subscriberID string) domain.State
	Update(subscriberID string, fn func(*domain.State)) domain.State
	Clear(subscriberID string)
}
