package telegram

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/samber/oops"
)

// Client implements transport.Transport on top of the Bot API. Subscriber
// ids are chat ids.
type Client struct {
	bot *bot.Bot
}

var _ transport.Transport = (*Client)(nil)

// NewClient creates a new Telegram client
func NewClient(b *bot.Bot) *Client {
	return &Client{bot: b}
}

func (c *Client) SendText(ctx context.Context, subscriberID, text string) error {
	chatID, err := parseChatID(subscriberID)
	if err != nil {
		return err
	}

	_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to send text").Wrap(err)
	}
	return nil
}

func (c *Client) SendCard(ctx context.Context, subscriberID string, cd *card.Card) error {
	chatID, err := parseChatID(subscriberID)
	if err != nil {
		return err
	}

	text, markup := RenderCard(cd)
	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to send card").Wrap(err)
	}
	return nil
}

// EditCard replaces a previously sent message with a card
func (c *Client) EditCard(ctx context.Context, chatID int64, messageID int, cd *card.Card) error {
	text, markup := RenderCard(cd)
	params := &bot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID, "context", "failed to edit card").Wrap(err)
	}
	return nil
}

// GetProfile reports the chat's name. Telegram does not expose a user's
// timezone, so callers fall back to their default.
func (c *Client) GetProfile(ctx context.Context, subscriberID string) (transport.Profile, error) {
	chatID, err := parseChatID(subscriberID)
	if err != nil {
		return transport.Profile{}, err
	}

	chat, err := c.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return transport.Profile{}, oops.With("subscriber_id", subscriberID, "context", "failed to get chat").Wrap(err)
	}
	return transport.Profile{Name: chat.FirstName}, nil
}

func parseChatID(subscriberID string) (int64, error) {
	id, err := strconv.ParseInt(subscriberID, 10, 64)
	if err != nil {
		return 0, oops.With("subscriber_id", subscriberID, "context", "not a telegram chat id").Wrap(err)
	}
	return id, nil
}
