// Package view builds the configuration cards and texts shown to a
// subscriber. Transports render the resulting cards.
package view

import (
	"fmt"
	"strings"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/samber/lo"
)

const notSet = "not set"

var modeDescriptions = map[subscriberDomain.ReportMode]string{
	subscriberDomain.ReportModeDaily:       "daily summary",
	subscriberDomain.ReportModeCurrent:     "current rankings",
	subscriberDomain.ReportModeIncremental: "incremental (new items only)",
}

// ModeDescription explains a report mode in a few words
func ModeDescription(mode subscriberDomain.ReportMode) string {
	if d, ok := modeDescriptions[mode]; ok {
		return d
	}
	return mode.String()
}

// AvailableSources lists the catalog for hints
func AvailableSources() string {
	return strings.Join(lo.Map(subscriberDomain.Catalog, func(s subscriberDomain.Source, _ int) string {
		return fmt.Sprintf("%s (%s)", s.Name, s.Alias)
	}), ", ")
}

func joinOrNotSet(values []string, sep string) string {
	if len(values) == 0 {
		return notSet
	}
	return strings.Join(values, sep)
}

func sourceNames(ids []string) []string {
	return lo.Map(ids, func(id string, _ int) string { return subscriberDomain.SourceName(id) })
}

func enabledText(enabled bool) string {
	return lo.Ternary(enabled, "✅ Enabled", "⏸ Paused")
}

func backButton() card.Button {
	return card.Btn("🔙 Main menu", card.StyleDefault, card.ActionKindShowMainMenu, "")
}

// Welcome greets a newly provisioned subscriber
func Welcome() *card.Card {
	return card.New("👋 Welcome to the trend digest bot", card.ColorBlue).
		Text("Personalized hot-topic digests:\n• your own keywords\n• a choice of sources\n• delivery at the times you pick").
		Divider().
		Heading("Quick start").
		Text("1. Keywords: /keywords AI,blockchain\n2. Sources: /sources zhihu,weibo\n3. Delivery times: /time 09:00,18:00\n4. Review: /status\n5. Try it: /test").
		Actions(
			card.Btn("🏠 Open menu", card.StylePrimary, card.ActionKindShowMainMenu, ""),
			card.Btn("📋 My config", card.StyleDefault, card.ActionKindShowStatus, ""),
		)
}

// Help lists every command
func Help() *card.Card {
	return card.New("📖 Commands", card.ColorBlue).
		Heading("Configure").
		Text("/start - create your configuration\n/keywords AI,blockchain - set keywords (up to 10)\n/sources zhihu,weibo - pick sources\n/time 09:00,18:00 - set delivery times\n/mode current - daily | current | incremental").
		Heading("Inspect").
		Text("/status - show your configuration\n/test - send a digest now").
		Heading("Control").
		Text("/pause - stop deliveries\n/resume - restart deliveries\n/help - this message").
		Divider().
		Heading("Sources").
		Text(AvailableSources())
}

// HelpText is the plain help shown on platforms without cards
func HelpText() string {
	return Help().PlainText()
}

// Status shows the committed configuration with edit buttons, the latest
// push attempts and, when available, the personal RSS link.
func Status(sub *subscriberDomain.Subscriber, logs []*pushDomain.LogEntry, feedURL string) *card.Card {
	c := card.New("📋 Current configuration", card.ColorBlue).
		Heading(fmt.Sprintf("Keywords (%d/%d)", len(sub.Keywords), subscriberDomain.MaxKeywords)).
		Text(joinOrNotSet(sub.Keywords, ", ")).
		Actions(card.Btn("✏️ Edit keywords", card.StyleDefault, card.ActionKindShowKeywordsMenu, "")).
		Heading("Sources").
		Text(joinOrNotSet(sourceNames(sub.Sources), ", ")).
		Actions(card.Btn("✏️ Edit sources", card.StyleDefault, card.ActionKindShowSourcesMenu, "")).
		Heading("Delivery times").
		Text(fmt.Sprintf("Every day %s (%s)", joinOrNotSet(sub.DeliveryTimes, ", "), sub.Timezone)).
		Actions(card.Btn("✏️ Edit times", card.StyleDefault, card.ActionKindShowTimeMenu, "")).
		Heading("Report mode").
		Text(ModeDescription(sub.ReportMode)).
		Heading("Status").
		Text(enabledText(sub.Enabled))

	if len(logs) > 0 {
		c.Heading("Recent pushes").Text(strings.Join(lo.Map(logs, func(l *pushDomain.LogEntry, _ int) string {
			line := fmt.Sprintf("%s %s, %d items", l.PushedAt.UTC().Format("2006-01-02 15:04 UTC"), l.Status, l.ItemCount)
			if l.Error != "" {
				line += " (" + l.Error + ")"
			}
			return line
		}), "\n"))
	}

	if feedURL != "" {
		c.Link("📡 Your RSS feed", feedURL, "")
	}

	return c.Actions(
		card.Btn(lo.Ternary(sub.Enabled, "⏸ Pause", "▶️ Resume"), lo.Ternary(sub.Enabled, card.StyleDanger, card.StylePrimary), card.ActionKindToggleEnabled, ""),
		card.Btn("🧪 Test push", card.StyleDefault, card.ActionKindTestPush, ""),
		backButton(),
	)
}

// MainMenu is the entry point of the configuration flow
func MainMenu(sub *subscriberDomain.Subscriber) *card.Card {
	return card.New("🏠 Trend digest", card.ColorBlue).
		Text(fmt.Sprintf("Status: %s\n\nWhat would you like to configure?", enabledText(sub.Enabled))).
		Actions(
			card.Btn("📝 Keywords", card.StyleDefault, card.ActionKindShowKeywordsMenu, ""),
			card.Btn("📊 Sources", card.StyleDefault, card.ActionKindShowSourcesMenu, ""),
		).
		Actions(
			card.Btn("⏰ Delivery times", card.StyleDefault, card.ActionKindShowTimeMenu, ""),
			card.Btn("📋 View config", card.StyleDefault, card.ActionKindShowStatus, ""),
		)
}

// KeywordsMenu lists keywords with remove buttons
func KeywordsMenu(sub *subscriberDomain.Subscriber, notice string) *card.Card {
	c := card.New("📝 Keywords", card.ColorGreen)
	if notice != "" {
		c.Text(notice)
	}
	c.Heading(fmt.Sprintf("Current keywords (%d/%d)", len(sub.Keywords), subscriberDomain.MaxKeywords))

	if len(sub.Keywords) == 0 {
		c.Text("No keywords yet, add one.")
	}
	for _, kw := range sub.Keywords {
		c.Actions(
			card.Btn("🔖 "+kw, card.StyleDefault, card.ActionKindNoop, ""),
			card.Btn("🗑 Remove", card.StyleDanger, card.ActionKindRemoveKeyword, kw),
		)
	}

	c.Divider()
	if len(sub.Keywords) < subscriberDomain.MaxKeywords {
		return c.Actions(card.Btn("➕ Add keyword", card.StylePrimary, card.ActionKindAddKeywordPrompt, ""), backButton())
	}
	return c.Text(subscriberDomain.ErrKeywordLimit.Error()).Actions(backButton())
}

// SourcesMenu shows the draft selection as toggles
func SourcesMenu(draft []string, notice string) *card.Card {
	c := card.New("📊 Sources", card.ColorGreen)
	if notice != "" {
		c.Text(notice)
	}
	c.Text(fmt.Sprintf("Selected: %d\n\nTap a source to toggle it, then save.", len(draft)))

	buttons := lo.Map(subscriberDomain.Catalog, func(s subscriberDomain.Source, _ int) card.Button {
		selected := lo.Contains(draft, s.ID)
		return card.Btn(lo.Ternary(selected, "✅ ", "⬜ ")+s.Name, card.StyleDefault, card.ActionKindToggleSource, s.ID)
	})
	for _, row := range lo.Chunk(buttons, 2) {
		c.Actions(row...)
	}

	return c.Divider().Actions(
		card.Btn("💾 Save", card.StylePrimary, card.ActionKindSaveSources, ""),
		backButton(),
	)
}

// TimeMenu lists delivery times with remove buttons and quick presets
func TimeMenu(sub *subscriberDomain.Subscriber, notice string) *card.Card {
	c := card.New("⏰ Delivery times", card.ColorOrange)
	if notice != "" {
		c.Text(notice)
	}
	c.Heading(fmt.Sprintf("Current times (%d), %s", len(sub.DeliveryTimes), sub.Timezone))

	if len(sub.DeliveryTimes) == 0 {
		c.Text("No delivery times yet, add one.")
	}
	for _, t := range sub.DeliveryTimes {
		c.Actions(
			card.Btn("⏰ "+t, card.StyleDefault, card.ActionKindNoop, ""),
			card.Btn("🗑 Remove", card.StyleDanger, card.ActionKindRemoveTime, t),
		)
	}

	presets := lo.Filter(subscriberDomain.PresetTimes, func(t string, _ int) bool {
		return !lo.Contains(sub.DeliveryTimes, t)
	})
	c.Divider().Heading("Quick add")
	c.Actions(lo.Map(presets, func(t string, _ int) card.Button {
		return card.Btn("➕ "+t, card.StyleDefault, card.ActionKindAddPresetTime, t)
	})...)

	return c.Actions(
		card.Btn("✏️ Custom time", card.StylePrimary, card.ActionKindAddCustomTimePrompt, ""),
		backButton(),
	)
}

// Prompt asks for one free-text value
func Prompt(title, text string) *card.Card {
	return card.New(title, card.ColorBlue).
		Text(text).
		Actions(backButton())
}
