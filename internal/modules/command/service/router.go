package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/conversation/view"
	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/samber/lo"
)

const (
	CommandPrefix   = "/"
	statusLogsLimit = 3
)

// Subscribers is the configuration store the router mutates
type Subscribers interface {
	Get(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, error)
	EnsureDefault(ctx context.Context, subscriberID, timezone string) (*subscriberDomain.Subscriber, bool, error)
	Update(ctx context.Context, subscriberID string, fn func(*subscriberDomain.Subscriber) error) (*subscriberDomain.Subscriber, error)
	RecentPushLogs(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.LogEntry, error)
}

// Reloader reprograms the scheduler for one subscriber
type Reloader interface {
	ReloadOne(ctx context.Context, subscriberID string) error
}

// Pusher runs an on-demand delivery
type Pusher interface {
	Push(ctx context.Context, subscriberID string) pushDomain.Outcome
}

// Profiles looks up what the platform knows about a subscriber
type Profiles interface {
	GetProfile(ctx context.Context, subscriberID string) (transport.Profile, error)
}

// Command describes one entry of the command vocabulary
type Command struct {
	Name        string
	Usage       string
	Description string
}

// Commands is the fixed command vocabulary, in menu order
var Commands = []Command{
	{Name: "start", Description: "Create your configuration"},
	{Name: "keywords", Usage: "AI,blockchain", Description: "Set keywords (up to 10)"},
	{Name: "sources", Usage: "zhihu,weibo", Description: "Pick sources"},
	{Name: "time", Usage: "09:00,18:00", Description: "Set delivery times"},
	{Name: "mode", Usage: "daily|current|incremental", Description: "Set the report mode"},
	{Name: "status", Description: "Show your configuration"},
	{Name: "test", Description: "Send a digest now"},
	{Name: "pause", Description: "Stop deliveries"},
	{Name: "resume", Description: "Restart deliveries"},
	{Name: "help", Description: "List commands"},
}

// Router maps command text to configuration changes. Each call yields
// exactly one reply.
type Router struct {
	subscribers     Subscribers
	reloader        Reloader
	pusher          Pusher
	profiles        Profiles
	defaultTimezone string
	publicURL       string
	logger          *slog.Logger
}

// New creates a new command router. profiles may be nil.
func New(subscribers Subscribers, reloader Reloader, pusher Pusher, profiles Profiles, defaultTimezone, publicURL string) *Router {
	return &Router{
		subscribers:     subscribers,
		reloader:        reloader,
		pusher:          pusher,
		profiles:        profiles,
		defaultTimezone: lo.Ternary(defaultTimezone != "", defaultTimezone, subscriberDomain.DefaultTimezone),
		publicURL:       strings.TrimRight(publicURL, "/"),
		logger:          slog.Default(),
	}
}

// SetLogger sets the logger
func (r *Router) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// IsCommand reports whether text is addressed to the router
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), CommandPrefix)
}

// Handle executes one command
func (r *Router) Handle(ctx context.Context, subscriberID, text string) view.Reply {
	text = strings.TrimSpace(text)
	if !IsCommand(text) {
		return view.TextReply(false, "Please send a command, for example /help")
	}

	name, args := splitCommand(text)
	switch name {
	case "start":
		return r.start(ctx, subscriberID)
	case "keywords":
		return r.keywords(ctx, subscriberID, args)
	case "sources":
		return r.sources(ctx, subscriberID, args)
	case "time":
		return r.time(ctx, subscriberID, args)
	case "mode":
		return r.mode(ctx, subscriberID, args)
	case "status":
		return r.status(ctx, subscriberID)
	case "test":
		return r.test(ctx, subscriberID)
	case "pause":
		return r.setEnabled(ctx, subscriberID, false)
	case "resume":
		return r.setEnabled(ctx, subscriberID, true)
	case "help":
		return view.CardReply(view.Help())
	default:
		return view.TextReply(false, fmt.Sprintf("Unknown command: /%s\nSend /help to see the commands.", name))
	}
}

// Provision returns the subscriber's configuration, creating the default
// seed (in the platform-reported timezone when known) and scheduling it on
// first contact.
func (r *Router) Provision(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, bool, error) {
	sub, created, err := r.subscribers.EnsureDefault(ctx, subscriberID, r.timezone(ctx, subscriberID))
	if err != nil {
		return nil, false, err
	}
	if created {
		r.logger.Info("Subscriber provisioned", "subscriber_id", subscriberID, "timezone", sub.Timezone)
		r.reload(ctx, subscriberID)
	}
	return sub, created, nil
}

// FeedURL is the subscriber's RSS archive address, empty without public_url
func (r *Router) FeedURL(subscriberID string) string {
	if r.publicURL == "" {
		return ""
	}
	return r.publicURL + "/rss/" + url.PathEscape(subscriberID)
}

func (r *Router) start(ctx context.Context, subscriberID string) view.Reply {
	_, created, err := r.Provision(ctx, subscriberID)
	if err != nil {
		return r.failure(subscriberID, "start", err)
	}
	if !created {
		return view.TextReply(true, "You are already set up.\n/status shows your configuration, /help lists the commands.")
	}
	return view.CardReply(view.Welcome())
}

func (r *Router) keywords(ctx context.Context, subscriberID, args string) view.Reply {
	if args == "" {
		return view.TextReply(false, "Please list keywords, for example: /keywords AI,blockchain,EV")
	}
	keywords := splitList(args)
	if len(keywords) == 0 {
		return view.TextReply(false, view.ErrorText(subscriberDomain.ErrEmptyKeyword))
	}

	sub, err := r.update(ctx, subscriberID, func(s *subscriberDomain.Subscriber) error {
		return s.SetKeywords(keywords)
	})
	if err != nil {
		return r.rejected(subscriberID, "keywords", err)
	}

	return view.TextReply(true, fmt.Sprintf("✅ Keywords set: %s\n\nNext:\n• pick sources: /sources zhihu,weibo\n• set delivery times: /time 09:00",
		strings.Join(sub.Keywords, ", ")))
}

func (r *Router) sources(ctx context.Context, subscriberID, args string) view.Reply {
	if args == "" {
		return view.TextReply(false, "Please list sources, for example: /sources zhihu,weibo\n\nAvailable: "+view.AvailableSources())
	}
	names := splitList(args)
	if len(names) == 0 {
		return view.TextReply(false, view.ErrorText(subscriberDomain.ErrNoSources))
	}

	ids, unknown := subscriberDomain.ResolveSources(names)
	if len(unknown) > 0 {
		return view.TextReply(false, fmt.Sprintf("⚠️ Unknown sources: %s\n\nAvailable: %s", strings.Join(unknown, ", "), view.AvailableSources()))
	}

	sub, err := r.update(ctx, subscriberID, func(s *subscriberDomain.Subscriber) error {
		return s.SetSources(ids)
	})
	if err != nil {
		return r.rejected(subscriberID, "sources", err)
	}

	return view.TextReply(true, fmt.Sprintf("✅ Sources set: %s\n\nNext:\n• set delivery times: /time 09:00,18:00",
		strings.Join(lo.Map(sub.Sources, func(id string, _ int) string { return subscriberDomain.SourceName(id) }), ", ")))
}

func (r *Router) time(ctx context.Context, subscriberID, args string) view.Reply {
	if args == "" {
		return view.TextReply(false, "Please list delivery times, for example: /time 09:00,18:00")
	}
	values := splitList(args)
	if len(values) == 0 {
		return view.TextReply(false, view.ErrorText(subscriberDomain.ErrInvalidDeliveryTime))
	}
	for _, v := range values {
		if _, err := subscriberDomain.NormalizeDeliveryTime(v); err != nil {
			return view.TextReply(false, fmt.Sprintf("⚠️ Invalid time %q: use HH:MM between 00:00 and 23:59.", v))
		}
	}

	sub, err := r.update(ctx, subscriberID, func(s *subscriberDomain.Subscriber) error {
		return s.SetDeliveryTimes(values)
	})
	if err != nil {
		return r.rejected(subscriberID, "time", err)
	}
	r.reload(ctx, subscriberID)

	return view.TextReply(true, fmt.Sprintf("✅ Delivery times set: every day %s (%s)\n\nAll set!\n• review: /status\n• try it: /test",
		strings.Join(sub.DeliveryTimes, ", "), sub.Timezone))
}

func (r *Router) mode(ctx context.Context, subscriberID, args string) view.Reply {
	mode, err := subscriberDomain.ParseReportMode(strings.TrimSpace(args))
	if args == "" || err != nil {
		lines := lo.Map(subscriberDomain.ReportModeNames(), func(name string, _ int) string {
			return fmt.Sprintf("• %s - %s", name, view.ModeDescription(subscriberDomain.ReportMode(name)))
		})
		return view.TextReply(false, "Please pick a report mode: /mode current\n\n"+strings.Join(lines, "\n"))
	}

	if _, err := r.update(ctx, subscriberID, func(s *subscriberDomain.Subscriber) error {
		s.ReportMode = mode
		return nil
	}); err != nil {
		return r.rejected(subscriberID, "mode", err)
	}

	return view.TextReply(true, "✅ Report mode set: "+view.ModeDescription(mode))
}

func (r *Router) status(ctx context.Context, subscriberID string) view.Reply {
	sub, err := r.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return r.rejected(subscriberID, "status", err)
	}

	logs, err := r.subscribers.RecentPushLogs(ctx, subscriberID, statusLogsLimit)
	if err != nil {
		r.logger.Warn("Failed to load push history", "subscriber_id", subscriberID, "error", err)
	}

	return view.CardReply(view.Status(sub, logs, r.FeedURL(subscriberID)))
}

func (r *Router) test(ctx context.Context, subscriberID string) view.Reply {
	if _, err := r.subscribers.Get(ctx, subscriberID); err != nil {
		return r.rejected(subscriberID, "test", err)
	}

	switch outcome := r.pusher.Push(ctx, subscriberID); outcome {
	case pushDomain.OutcomeDelivered:
		return view.Reply{OK: true}
	case pushDomain.OutcomeIncomplete:
		return view.Reply{OK: false}
	case pushDomain.OutcomeEmpty:
		return view.TextReply(true, "✅ Test push finished: nothing matches your keywords right now.")
	case pushDomain.OutcomeSkipped:
		return view.TextReply(false, "⏸ Deliveries are paused. Send /resume first.")
	default:
		return view.TextReply(false, "❌ The test push failed, please try again later.")
	}
}

func (r *Router) setEnabled(ctx context.Context, subscriberID string, enabled bool) view.Reply {
	var was bool
	_, err := r.subscribers.Update(ctx, subscriberID, func(s *subscriberDomain.Subscriber) error {
		was = s.Enabled
		s.Enabled = enabled
		return nil
	})
	if err != nil {
		return r.rejected(subscriberID, lo.Ternary(enabled, "resume", "pause"), err)
	}

	switch {
	case was == enabled && enabled:
		return view.TextReply(true, "Deliveries are already running.")
	case was == enabled:
		return view.TextReply(true, "Deliveries are already paused.")
	}

	r.reload(ctx, subscriberID)
	r.logger.Info("Subscriber toggled", "subscriber_id", subscriberID, "enabled", enabled)

	if enabled {
		return view.TextReply(true, "✅ Deliveries resumed")
	}
	return view.TextReply(true, "✅ Deliveries paused\nSend /resume to restart them.")
}

// update provisions a missing subscriber first, mirroring the behavior of
// configuring before /start.
func (r *Router) update(ctx context.Context, subscriberID string, fn func(*subscriberDomain.Subscriber) error) (*subscriberDomain.Subscriber, error) {
	if _, _, err := r.Provision(ctx, subscriberID); err != nil {
		return nil, err
	}
	return r.subscribers.Update(ctx, subscriberID, fn)
}

func (r *Router) reload(ctx context.Context, subscriberID string) {
	if err := r.reloader.ReloadOne(ctx, subscriberID); err != nil {
		r.logger.Error("Failed to reload schedule", "subscriber_id", subscriberID, "error", err)
	}
}

func (r *Router) timezone(ctx context.Context, subscriberID string) string {
	if r.profiles == nil {
		return r.defaultTimezone
	}
	profile, err := r.profiles.GetProfile(ctx, subscriberID)
	if err != nil {
		r.logger.Warn("Profile lookup failed, using default timezone", "subscriber_id", subscriberID, "error", err)
		return r.defaultTimezone
	}
	if subscriberDomain.ValidateTimezone(profile.Timezone) != nil {
		return r.defaultTimezone
	}
	return profile.Timezone
}

// rejected answers validation errors with their corrective text; anything
// else is logged as a failure
func (r *Router) rejected(subscriberID, command string, err error) view.Reply {
	if text := view.ErrorText(err); text != view.FailureText {
		return view.TextReply(false, text)
	}
	return r.failure(subscriberID, command, err)
}

func (r *Router) failure(subscriberID, command string, err error) view.Reply {
	r.logger.Error("Command failed", "subscriber_id", subscriberID, "command", command, "error", err)
	return view.TextReply(false, view.FailureText)
}

// splitCommand returns the lower-cased command name without the prefix or a
// trailing @botname, and the trimmed arguments.
func splitCommand(text string) (name, args string) {
	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	head = strings.TrimPrefix(head, CommandPrefix)
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

// splitList splits on ASCII and full-width commas and the ideographic
// enumeration comma
func splitList(args string) []string {
	parts := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	})
	return lo.FilterMap(parts, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
}
