package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

func buttons(c *card.Card) []card.Button {
	var out []card.Button
	for _, el := range c.Elements {
		out = append(out, el.Buttons...)
	}
	return out
}

func hasAction(c *card.Card, kind card.ActionKind, value string) bool {
	for _, b := range buttons(c) {
		if b.Action.Kind == kind && b.Action.Value == value {
			return true
		}
	}
	return false
}

func TestKeywordsMenuHidesAddAtLimit(t *testing.T) {
	sub := subscriberDomain.NewDefault("u1", "UTC", time.Now())
	if !hasAction(KeywordsMenu(sub, ""), card.ActionKindAddKeywordPrompt, "") {
		t.Fatal("add button expected below the limit")
	}

	sub.Keywords = nil
	for i := range subscriberDomain.MaxKeywords {
		sub.Keywords = append(sub.Keywords, fmt.Sprintf("k%d", i))
	}
	menu := KeywordsMenu(sub, "")
	if hasAction(menu, card.ActionKindAddKeywordPrompt, "") {
		t.Fatal("add button must be hidden at the limit")
	}
	if !hasAction(menu, card.ActionKindRemoveKeyword, "k9") {
		t.Fatal("every keyword needs a remove button")
	}
}

func TestSourcesMenuMarksDraft(t *testing.T) {
	menu := SourcesMenu([]string{"weibo"}, "")

	var marked []string
	for _, b := range buttons(menu) {
		if b.Action.Kind == card.ActionKindToggleSource && strings.HasPrefix(b.Text, "✅") {
			marked = append(marked, b.Action.Value)
		}
	}
	if len(marked) != 1 || marked[0] != "weibo" {
		t.Fatalf("expected only weibo marked, got %v", marked)
	}
	if !hasAction(menu, card.ActionKindSaveSources, "") {
		t.Fatal("save button missing")
	}
}

func TestTimeMenuOffersOnlyMissingPresets(t *testing.T) {
	sub := subscriberDomain.NewDefault("u1", "UTC", time.Now())
	menu := TimeMenu(sub, "")

	if hasAction(menu, card.ActionKindAddPresetTime, "09:00") {
		t.Fatal("an already configured time must not be offered as a preset")
	}
	if !hasAction(menu, card.ActionKindAddPresetTime, "18:00") {
		t.Fatal("missing preset 18:00")
	}
	if !hasAction(menu, card.ActionKindRemoveTime, "09:00") {
		t.Fatal("configured time needs a remove button")
	}
}

func TestStatusShowsHistoryAndFeed(t *testing.T) {
	sub := subscriberDomain.NewDefault("u1", "UTC", time.Now())
	logs := []*pushDomain.LogEntry{{PushedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC), ItemCount: 7, Status: pushDomain.StatusSuccess}}

	text := Status(sub, logs, "https://bot.example.com/rss/u1").PlainText()
	for _, want := range []string{"AI", "Zhihu", "09:00", "2025-01-02 03:04 UTC success, 7 items", "https://bot.example.com/rss/u1"} {
		if !strings.Contains(text, want) {
			t.Errorf("status missing %q:\n%s", want, text)
		}
	}
}

func TestErrorTextIsSpecific(t *testing.T) {
	if got := ErrorText(subscriberDomain.ErrKeywordLimit); !strings.Contains(got, "limit reached") {
		t.Fatalf("unexpected limit text %q", got)
	}
	if got := ErrorText(fmt.Errorf("boom")); got != FailureText {
		t.Fatalf("unexpected fallback %q", got)
	}
}
