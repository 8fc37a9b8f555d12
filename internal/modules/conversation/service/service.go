package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/repository"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/samber/lo"
)

// Subscribers is the configuration store the conversation edits
type Subscribers interface {
	Get(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, error)
	Update(ctx context.Context, subscriberID string, fn func(*subscriberDomain.Subscriber) error) (*subscriberDomain.Subscriber, error)
}

// Router executes slash commands and provisions first-time subscribers
type Router interface {
	Handle(ctx context.Context, subscriberID, text string) view.Reply
	Provision(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, bool, error)
}

// Reloader reprograms the scheduler for one subscriber
type Reloader interface {
	ReloadOne(ctx context.Context, subscriberID string) error
}

// Service drives the card and free-text configuration flow. It holds no
// state of its own; everything transient lives in the repository.
type Service struct {
	state       repository.Repository
	subscribers Subscribers
	router      Router
	reloader    Reloader
	inputTTL    time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// New creates a new conversation service. A zero inputTTL keeps pending
// input until it is consumed.
func New(state repository.Repository, subscribers Subscribers, router Router, reloader Reloader, inputTTL time.Duration) *Service {
	return &Service{
		state:       state,
		subscribers: subscribers,
		router:      router,
		reloader:    reloader,
		inputTTL:    inputTTL,
		now:         time.Now,
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// HandleMessage answers one inbound text message. A pending input consumes
// the message whatever it says; otherwise commands go to the router and any
// other text shows the subscriber's status.
func (s *Service) HandleMessage(ctx context.Context, subscriberID, text string) view.Reply {
	text = strings.TrimSpace(text)

	var pending domain.InputMode
	s.state.Update(subscriberID, func(st *domain.State) {
		if st.Waiting(s.inputTTL, s.now()) {
			pending = st.Input
		}
		st.ClearInput()
		st.CloseDraft()
	})

	switch pending {
	case domain.InputModeWaitingKeyword:
		return s.captureKeyword(ctx, subscriberID, text)
	case domain.InputModeWaitingTime:
		return s.captureTime(ctx, subscriberID, text)
	}

	if strings.HasPrefix(text, "/") {
		return s.router.Handle(ctx, subscriberID, text)
	}

	if _, _, err := s.router.Provision(ctx, subscriberID); err != nil {
		s.logger.Error("Failed to provision subscriber", "subscriber_id", subscriberID, "error", err)
		return view.TextReply(false, view.FailureText)
	}
	return s.router.Handle(ctx, subscriberID, "/status")
}

// HandleAction answers one card button press
func (s *Service) HandleAction(ctx context.Context, subscriberID string, action card.Action) view.Reply {
	if !action.Kind.IsValid() {
		s.logger.Warn("Rejected unknown action", "subscriber_id", subscriberID, "action", action.Kind)
		return view.TextReply(false, "⚠️ That button is no longer supported. Send /help to see what I can do.")
	}

	if !editsSources(action.Kind) {
		s.state.Update(subscriberID, func(st *domain.State) { st.CloseDraft() })
	}

	switch action.Kind {
	case card.ActionKindShowMainMenu:
		s.closeAll(subscriberID)
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			return view.CardReply(view.MainMenu(sub))
		})

	case card.ActionKindShowStatus, card.ActionKindViewConfig:
		s.closeAll(subscriberID)
		return s.router.Handle(ctx, subscriberID, "/status")

	case card.ActionKindShowKeywordsMenu:
		s.closeAll(subscriberID)
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			return view.CardReply(view.KeywordsMenu(sub, ""))
		})

	case card.ActionKindAddKeywordPrompt:
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			if len(sub.Keywords) >= subscriberDomain.MaxKeywords {
				return view.TextReply(false, view.ErrorText(subscriberDomain.ErrKeywordLimit))
			}
			s.await(subscriberID, domain.InputModeWaitingKeyword)
			return view.CardReply(view.Prompt("📝 Add keyword", "Send the keyword as your next message."))
		})

	case card.ActionKindRemoveKeyword:
		sub, err := s.subscribers.Update(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) error {
			return sub.RemoveKeyword(action.Value)
		})
		if err != nil {
			return s.rejected(subscriberID, action, err)
		}
		return view.CardReply(view.KeywordsMenu(sub, "🗑 Removed: "+action.Value))

	case card.ActionKindShowSourcesMenu:
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			st := s.state.Update(subscriberID, func(st *domain.State) {
				st.ClearInput()
				st.DraftOpen = true
				st.Draft = append([]string(nil), sub.Sources...)
			})
			return view.CardReply(view.SourcesMenu(st.Draft, ""))
		})

	case card.ActionKindToggleSource:
		if !subscriberDomain.IsKnownSource(action.Value) {
			return view.TextReply(false, view.ErrorText(subscriberDomain.ErrUnknownSource))
		}
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			st := s.state.Update(subscriberID, func(st *domain.State) {
				if !st.DraftOpen {
					st.DraftOpen = true
					st.Draft = append([]string(nil), sub.Sources...)
				}
				st.ToggleDraft(action.Value)
			})
			return view.CardReply(view.SourcesMenu(st.Draft, ""))
		})

	case card.ActionKindSaveSources:
		return s.saveSources(ctx, subscriberID)

	case card.ActionKindShowTimeMenu:
		s.closeAll(subscriberID)
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			return view.CardReply(view.TimeMenu(sub, ""))
		})

	case card.ActionKindAddPresetTime:
		return s.editTimes(ctx, subscriberID, action, "✅ Added: "+action.Value, func(sub *subscriberDomain.Subscriber) error {
			return sub.AddDeliveryTime(action.Value)
		})

	case card.ActionKindRemoveTime:
		return s.editTimes(ctx, subscriberID, action, "🗑 Removed: "+action.Value, func(sub *subscriberDomain.Subscriber) error {
			return sub.RemoveDeliveryTime(action.Value)
		})

	case card.ActionKindAddCustomTimePrompt:
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			s.await(subscriberID, domain.InputModeWaitingTime)
			return view.CardReply(view.Prompt("⏰ Custom time",
				fmt.Sprintf("Send a time as HH:MM in your timezone (%s), for example 07:30.", sub.Timezone)))
		})

	case card.ActionKindToggleEnabled:
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			return s.router.Handle(ctx, subscriberID, lo.Ternary(sub.Enabled, "/pause", "/resume"))
		})

	case card.ActionKindPause:
		return s.router.Handle(ctx, subscriberID, "/pause")

	case card.ActionKindTestPush:
		return s.router.Handle(ctx, subscriberID, "/test")

	case card.ActionKindNoop:
		return view.Reply{OK: true}
	}

	return view.TextReply(false, "⚠️ That button is no longer supported.")
}

// editsSources reports whether the action belongs to the source editor and
// keeps its draft open
func editsSources(kind card.ActionKind) bool {
	switch kind {
	case card.ActionKindShowSourcesMenu, card.ActionKindToggleSource, card.ActionKindSaveSources, card.ActionKindNoop:
		return true
	default:
		return false
	}
}

func (s *Service) captureKeyword(ctx context.Context, subscriberID, text string) view.Reply {
	sub, err := s.subscribers.Update(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) error {
		return sub.AddKeyword(text)
	})
	if err != nil {
		return s.rejected(subscriberID, card.Action{Kind: card.ActionKindAddKeywordPrompt}, err)
	}
	return view.CardReply(view.KeywordsMenu(sub, "✅ Added: "+strings.TrimSpace(text)))
}

func (s *Service) captureTime(ctx context.Context, subscriberID, text string) view.Reply {
	action := card.Action{Kind: card.ActionKindAddCustomTimePrompt, Value: text}
	normalized, err := subscriberDomain.NormalizeDeliveryTime(text)
	if err != nil {
		return s.rejected(subscriberID, action, err)
	}
	return s.editTimes(ctx, subscriberID, action, "✅ Added: "+normalized, func(sub *subscriberDomain.Subscriber) error {
		return sub.AddDeliveryTime(normalized)
	})
}

func (s *Service) editTimes(ctx context.Context, subscriberID string, action card.Action, notice string, fn func(*subscriberDomain.Subscriber) error) view.Reply {
	sub, err := s.subscribers.Update(ctx, subscriberID, fn)
	if err != nil {
		return s.rejected(subscriberID, action, err)
	}
	s.reload(ctx, subscriberID)
	return view.CardReply(view.TimeMenu(sub, notice))
}

// saveSources commits the draft. The draft is taken atomically so a toggle
// racing with the save is either included or applies to a fresh draft.
func (s *Service) saveSources(ctx context.Context, subscriberID string) view.Reply {
	var draft []string
	var open bool
	s.state.Update(subscriberID, func(st *domain.State) {
		draft, open = st.Draft, st.DraftOpen
		st.CloseDraft()
	})

	if !open {
		return s.withSubscriber(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) view.Reply {
			return view.CardReply(view.SourcesMenu(sub.Sources, "Nothing to save."))
		})
	}

	sub, err := s.subscribers.Update(ctx, subscriberID, func(sub *subscriberDomain.Subscriber) error {
		return sub.SetSources(draft)
	})
	if err != nil {
		s.state.Update(subscriberID, func(st *domain.State) {
			st.DraftOpen = true
			st.Draft = draft
		})
		if text := view.ErrorText(err); text != view.FailureText {
			return view.CardReply(view.SourcesMenu(draft, text))
		}
		return s.rejected(subscriberID, card.Action{Kind: card.ActionKindSaveSources}, err)
	}

	names := lo.Map(sub.Sources, func(id string, _ int) string { return subscriberDomain.SourceName(id) })
	return view.CardReply(view.SourcesMenu(sub.Sources, "✅ Saved: "+strings.Join(names, ", ")))
}

func (s *Service) withSubscriber(ctx context.Context, subscriberID string, fn func(*subscriberDomain.Subscriber) view.Reply) view.Reply {
	sub, err := s.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return s.rejected(subscriberID, card.Action{}, err)
	}
	return fn(sub)
}

func (s *Service) await(subscriberID string, mode domain.InputMode) {
	s.state.Update(subscriberID, func(st *domain.State) {
		st.CloseDraft()
		st.Input = mode
		st.InputSince = s.now()
	})
}

func (s *Service) closeAll(subscriberID string) {
	s.state.Clear(subscriberID)
}

func (s *Service) reload(ctx context.Context, subscriberID string) {
	if err := s.reloader.ReloadOne(ctx, subscriberID); err != nil {
		s.logger.Error("Failed to reload schedule", "subscriber_id", subscriberID, "error", err)
	}
}

func (s *Service) rejected(subscriberID string, action card.Action, err error) view.Reply {
	text := view.ErrorText(err)
	if text == view.FailureText {
		s.logger.Error("Conversation step failed", "subscriber_id", subscriberID, "action", action.Kind, "error", err)
	}
	return view.TextReply(false, text)
}
