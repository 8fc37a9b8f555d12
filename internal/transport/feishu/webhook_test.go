package feishu

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

type fakeConversation struct {
	mu       sync.Mutex
	messages []string
	actions  []card.Action
}

func (f *fakeConversation) HandleMessage(_ context.Context, id, text string) view.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, id+":"+text)
	return view.TextReply(true, "echo "+text)
}

func (f *fakeConversation) HandleAction(_ context.Context, id string, a card.Action) view.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, a)
	return view.CardReply(card.New("Menu", card.ColorBlue))
}

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	cards []*card.Card
}

func (s *recordingSender) SendText(_ context.Context, _ string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingSender) SendCard(_ context.Context, _ string, c *card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, c)
	return nil
}

func newTestHandler(token string) (*Handler, *fakeConversation, *recordingSender) {
	conv := &fakeConversation{}
	sender := &recordingSender{}
	h := NewHandler(conv, sender, token)
	h.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, conv, sender
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestHandleEventURLVerification(t *testing.T) {
	h, _, _ := newTestHandler("vt")

	rec := post(h.HandleEvent, `{"type":"url_verification","challenge":"abc","token":"vt"}`)
	var out map[string]string
	json.NewDecoder(rec.Body).Decode(&out)
	if rec.Code != http.StatusOK || out["challenge"] != "abc" {
		t.Fatalf("challenge not echoed: %d %v", rec.Code, out)
	}

	rec = post(h.HandleEvent, `{"type":"url_verification","challenge":"abc","token":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

const messageEventBody = `{
	"schema": "2.0",
	"header": {"event_id": "ev-1", "event_type": "im.message.receive_v1", "token": "vt"},
	"event": {
		"sender": {"sender_id": {"open_id": "ou_1"}},
		"message": {"message_type": "text", "content": "{\"text\":\"/help\"}"}
	}
}`

func TestHandleEventMessageDeduplicated(t *testing.T) {
	h, conv, sender := newTestHandler("vt")

	for range 2 {
		rec := post(h.HandleEvent, messageEventBody)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success"`) {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
		}
	}
	h.Wait(context.Background())

	if len(conv.messages) != 1 || conv.messages[0] != "ou_1:/help" {
		t.Fatalf("expected exactly one handled message, got %v", conv.messages)
	}
	if len(sender.texts) != 1 || sender.texts[0] != "echo /help" {
		t.Fatalf("expected one reply, got %v", sender.texts)
	}
}

func TestHandleEventIgnoresNonText(t *testing.T) {
	h, conv, _ := newTestHandler("")

	body := strings.Replace(messageEventBody, `"message_type": "text"`, `"message_type": "image"`, 1)
	post(h.HandleEvent, body)
	h.Wait(context.Background())

	if len(conv.messages) != 0 {
		t.Fatalf("image messages must be ignored, got %v", conv.messages)
	}
}

func TestHandleCardSchemas(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "legacy body",
			body: `{"open_id":"ou_1","token":"vt","action":{"value":{"action":"remove_keyword","keyword":"AI"}}}`,
		},
		{
			name: "double encoded value",
			body: `{"open_id":"ou_1","token":"vt","action":{"value":"\"{\\\"action\\\":\\\"remove_keyword\\\",\\\"value\\\":\\\"AI\\\"}\""}}`,
		},
		{
			name: "schema 2.0",
			body: `{"schema":"2.0","header":{"token":"vt"},"event":{"operator":{"open_id":"ou_1"},"action":{"value":{"action":"remove_keyword","value":"AI"}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, conv, sender := newTestHandler("vt")

			rec := post(h.HandleCard, tt.body)
			h.Wait(context.Background())

			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected status %d", rec.Code)
			}
			if len(conv.actions) != 1 || conv.actions[0].Kind != card.ActionKindRemoveKeyword || conv.actions[0].Value != "AI" {
				t.Fatalf("unexpected actions %+v", conv.actions)
			}
			if len(sender.cards) != 1 {
				t.Fatalf("expected one card reply, got %d", len(sender.cards))
			}
		})
	}
}

func TestHandleCardUnknownAction(t *testing.T) {
	h, conv, sender := newTestHandler("")

	post(h.HandleCard, `{"open_id":"ou_1","action":{"value":{"action":"launch_rocket"}}}`)
	h.Wait(context.Background())

	if len(conv.actions) != 0 {
		t.Fatalf("unknown actions must not reach the conversation: %+v", conv.actions)
	}
	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "/help") {
		t.Fatalf("expected an explicit answer, got %v", sender.texts)
	}
}

type blockingConversation struct {
	fakeConversation
	release chan struct{}
}

func (b *blockingConversation) HandleMessage(ctx context.Context, id, text string) view.Reply {
	<-b.release
	return b.fakeConversation.HandleMessage(ctx, id, text)
}

func TestWaitStopsAtContextDeadline(t *testing.T) {
	conv := &blockingConversation{release: make(chan struct{})}
	sender := &recordingSender{}
	h := NewHandler(conv, sender, "vt")
	h.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	post(h.HandleEvent, messageEventBody)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded while a reply is pending, got %v", err)
	}

	close(conv.release)
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("wait after release: %v", err)
	}
	if len(sender.texts) != 1 || sender.texts[0] != "echo /help" {
		t.Fatalf("expected the pending reply to be sent, got %v", sender.texts)
	}
}
