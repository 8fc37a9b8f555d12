// Package transport defines what the bot needs from a messaging platform.
// Subpackages implement it for Telegram and Feishu.
package transport

import (
	"context"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

// Profile is what the platform reports about a subscriber. Empty fields are
// unknown.
type Profile struct {
	Name     string
	Timezone string
}

// Transport delivers messages to subscribers
type Transport interface {
	Sender
	GetProfile(ctx context.Context, subscriberID string) (Profile, error)
}

// Sender is the outbound half of Transport
type Sender interface {
	SendText(ctx context.Context, subscriberID, text string) error
	SendCard(ctx context.Context, subscriberID string, c *card.Card) error
}

// SendReply delivers a conversation reply; an empty reply sends nothing
func SendReply(ctx context.Context, s Sender, subscriberID string, r view.Reply) error {
	switch {
	case r.Card != nil:
		return s.SendCard(ctx, subscriberID, r.Card)
	case r.Text != "":
		return s.SendText(ctx, subscriberID, r.Text)
	default:
		return nil
	}
}
