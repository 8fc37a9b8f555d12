package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	commandService "github.com/reshetovitsme/trend-digest-bot/internal/modules/command/service"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/dedup"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	WebhookPath = "/telegram/webhook"

	updateDedupTTL = 10 * time.Minute
	updateDedupMax = 10000
)

// Conversation answers inbound messages and button presses
type Conversation interface {
	HandleMessage(ctx context.Context, subscriberID, text string) view.Reply
	HandleAction(ctx context.Context, subscriberID string, action card.Action) view.Reply
}

// Handler handles Telegram bot interactions
type Handler struct {
	conversation Conversation
	updates      *dedup.Set
	logger       *slog.Logger
}

// New creates a new Telegram handler
func New(conversation Conversation) *Handler {
	return &Handler{
		conversation: conversation,
		updates:      dedup.New(updateDedupTTL, updateDedupMax),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger
func (h *Handler) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// NewBot creates a bot that dispatches every update to handler, usually
// Handler.HandleUpdate. serverURL and webhookSecret are optional.
func NewBot(token, serverURL, webhookSecret string, handler bot.HandlerFunc) (*bot.Bot, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handler),
	}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}
	if webhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(webhookSecret))
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
	}
	return b, nil
}

// RegisterCommands publishes the command menu
func (h *Handler) RegisterCommands(ctx context.Context, b *bot.Bot) error {
	_, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: lo.Map(commandService.Commands, func(c commandService.Command, _ int) models.BotCommand {
			return models.BotCommand{Command: c.Name, Description: c.Description}
		}),
	})
	if err != nil {
		return oops.With("context", "failed to set bot commands").Wrap(err)
	}
	return nil
}

// Run receives updates until ctx is done: through the webhook when
// webhookURL is set, by long polling otherwise.
func (h *Handler) Run(ctx context.Context, b *bot.Bot, webhookURL, webhookSecret string) {
	if err := h.RegisterCommands(ctx, b); err != nil {
		h.logger.Warn("Could not publish command menu", "error", err)
	}

	if webhookURL != "" {
		if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{URL: webhookURL, SecretToken: webhookSecret}); err != nil {
			h.logger.Error("Failed to set webhook", "url", webhookURL, "error", err)
		}
		h.logger.Info("Telegram webhook mode", "url", webhookURL)
		b.StartWebhook(ctx)
		return
	}

	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		h.logger.Warn("Failed to delete webhook", "error", err)
	}
	h.logger.Info("Telegram long polling mode")
	b.Start(ctx)
}

// HandleUpdate processes incoming updates
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.updates.FirstSeen(strconv.FormatInt(update.ID, 10)) {
		h.logger.Debug("Duplicate update ignored", "update_id", update.ID)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, b, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		h.handleMessage(ctx, b, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	subscriberID := strconv.FormatInt(msg.Chat.ID, 10)
	h.logger.Info("Message received", "subscriber_id", subscriberID)

	reply := h.conversation.HandleMessage(ctx, subscriberID, msg.Text)
	if err := transport.SendReply(ctx, NewClient(b), subscriberID, reply); err != nil {
		h.logger.Error("Failed to send reply", "subscriber_id", subscriberID, "error", err)
	}
}

func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, q *models.CallbackQuery) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		h.logger.Warn("Failed to answer callback", "error", err)
	}

	chatID, messageID := q.From.ID, 0
	if q.Message.Message != nil {
		chatID, messageID = q.Message.Message.Chat.ID, q.Message.Message.ID
	}
	subscriberID := strconv.FormatInt(chatID, 10)
	client := NewClient(b)

	action, err := DecodeCallback(q.Data)
	if err != nil {
		h.logger.Warn("Rejected callback", "subscriber_id", subscriberID, "data", q.Data, "error", err)
		if err := client.SendText(ctx, subscriberID, "⚠️ That button is no longer supported. Send /help to see what I can do."); err != nil {
			h.logger.Error("Failed to send reply", "subscriber_id", subscriberID, "error", err)
		}
		return
	}

	h.logger.Info("Action received", "subscriber_id", subscriberID, "action", action.Kind)
	reply := h.conversation.HandleAction(ctx, subscriberID, action)

	if reply.Card != nil && messageID != 0 && editsInPlace(action.Kind) {
		err := client.EditCard(ctx, chatID, messageID, reply.Card)
		if err == nil {
			return
		}
		h.logger.Debug("Edit failed, sending instead", "subscriber_id", subscriberID, "error", err)
	}

	if err := transport.SendReply(ctx, client, subscriberID, reply); err != nil {
		h.logger.Error("Failed to send reply", "subscriber_id", subscriberID, "error", err)
	}
}

// editsInPlace reports whether the answer replaces the pressed card. Buttons
// on a digest answer with a new message so the digest stays readable.
func editsInPlace(kind card.ActionKind) bool {
	switch kind {
	case card.ActionKindViewConfig, card.ActionKindPause, card.ActionKindTestPush:
		return false
	default:
		return true
	}
}
