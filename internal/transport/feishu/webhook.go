package feishu

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/dedup"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/samber/lo"
)

const (
	EventPath = "/api/event"
	CardPath  = "/api/card"

	eventDedupTTL = 30 * time.Minute
	eventDedupMax = 10000

	// Feishu expects an answer within three seconds, so replies are sent
	// after the response with their own deadline
	replyTimeout = 2 * time.Minute
)

// Conversation answers inbound messages and button presses
type Conversation interface {
	HandleMessage(ctx context.Context, subscriberID, text string) view.Reply
	HandleAction(ctx context.Context, subscriberID string, action card.Action) view.Reply
}

// Handler serves the Feishu event and card callback endpoints
type Handler struct {
	conversation      Conversation
	sender            transport.Sender
	events            *dedup.Set
	verificationToken string
	logger            *slog.Logger
	wg                sync.WaitGroup
}

// NewHandler creates a webhook handler. An empty verificationToken accepts
// every request.
func NewHandler(conversation Conversation, sender transport.Sender, verificationToken string) *Handler {
	return &Handler{
		conversation:      conversation,
		sender:            sender,
		events:            dedup.New(eventDedupTTL, eventDedupMax),
		verificationToken: verificationToken,
		logger:            slog.Default(),
	}
}

// SetLogger sets the logger
func (h *Handler) SetLogger(logger *slog.Logger) {
	h.logger = logger
}

// Wait blocks until every pending reply has been sent or ctx is done
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type eventEnvelope struct {
	// url_verification
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Token     string `json:"token"`

	// schema 2.0 events
	Header struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		Token     string `json:"token"`
	} `json:"header"`
	Event json.RawMessage `json:"event"`
}

type messageEvent struct {
	Sender struct {
		SenderID struct {
			OpenID string `json:"open_id"`
		} `json:"sender_id"`
	} `json:"sender"`
	Message struct {
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	} `json:"message"`
}

// HandleEvent answers url_verification and im.message.receive_v1 events
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var env eventEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if env.Type == "url_verification" {
		if !h.tokenValid(env.Token) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"challenge": env.Challenge})
		return
	}

	if !h.tokenValid(env.Header.Token) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if env.Header.EventType != "im.message.receive_v1" {
		h.logger.Debug("Ignoring event", "event_type", env.Header.EventType)
		writeSuccess(w)
		return
	}
	if !h.events.FirstSeen(env.Header.EventID) {
		h.logger.Debug("Duplicate event ignored", "event_id", env.Header.EventID)
		writeSuccess(w)
		return
	}

	var ev messageEvent
	if err := json.Unmarshal(env.Event, &ev); err != nil {
		h.logger.Warn("Malformed message event", "event_id", env.Header.EventID, "error", err)
		writeSuccess(w)
		return
	}

	subscriberID := ev.Sender.SenderID.OpenID
	if subscriberID == "" || ev.Message.MessageType != "text" {
		writeSuccess(w)
		return
	}

	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(ev.Message.Content), &content); err != nil {
		h.logger.Warn("Malformed message content", "subscriber_id", subscriberID, "error", err)
		writeSuccess(w)
		return
	}

	h.logger.Info("Message received", "subscriber_id", subscriberID)
	h.async(subscriberID, func(ctx context.Context) view.Reply {
		return h.conversation.HandleMessage(ctx, subscriberID, content.Text)
	})
	writeSuccess(w)
}

// cardCallback covers both the legacy callback body, with open_id and
// action at the top level, and the schema 2.0 card.action.trigger event
type cardCallback struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Token     string `json:"token"`
	OpenID    string `json:"open_id"`
	Action    struct {
		Value json.RawMessage `json:"value"`
	} `json:"action"`

	Header struct {
		Token string `json:"token"`
	} `json:"header"`
	Event struct {
		Operator struct {
			OpenID string `json:"open_id"`
		} `json:"operator"`
		Action struct {
			Value json.RawMessage `json:"value"`
		} `json:"action"`
	} `json:"event"`
}

// HandleCard answers interactive card button presses
func (h *Handler) HandleCard(w http.ResponseWriter, r *http.Request) {
	var cb cardCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if cb.Type == "url_verification" {
		if !h.tokenValid(cb.Token) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"challenge": cb.Challenge})
		return
	}

	if !h.tokenValid(lo.CoalesceOrEmpty(cb.Header.Token, cb.Token)) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	subscriberID := lo.CoalesceOrEmpty(cb.Event.Operator.OpenID, cb.OpenID)
	value := lo.Ternary(len(cb.Event.Action.Value) > 0, cb.Event.Action.Value, cb.Action.Value)
	if subscriberID == "" {
		writeSuccess(w)
		return
	}

	action, err := card.DecodeAction(value)
	if err != nil {
		h.logger.Warn("Rejected card action", "subscriber_id", subscriberID, "value", string(value), "error", err)
		h.async(subscriberID, func(context.Context) view.Reply {
			return view.TextReply(false, "⚠️ That button is no longer supported. Send /help to see what I can do.")
		})
		writeSuccess(w)
		return
	}

	h.logger.Info("Action received", "subscriber_id", subscriberID, "action", action.Kind)
	h.async(subscriberID, func(ctx context.Context) view.Reply {
		return h.conversation.HandleAction(ctx, subscriberID, action)
	})
	writeSuccess(w)
}

// async computes and sends a reply after the HTTP response has been written
func (h *Handler) async(subscriberID string, answer func(ctx context.Context) view.Reply) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()

		reply := answer(ctx)
		if err := transport.SendReply(ctx, h.sender, subscriberID, reply); err != nil {
			h.logger.Error("Failed to send reply", "subscriber_id", subscriberID, "error", err)
		}
	}()
}

func (h *Handler) tokenValid(token string) bool {
	return h.verificationToken == "" || token == h.verificationToken
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, map[string]any{"code": 0, "msg": "success"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
