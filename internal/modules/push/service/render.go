package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/samber/lo"
)

// RenderDigest builds the digest card. Groups follow the subscriber's keyword
// order; keywords the analyzer reported but the subscriber no longer has are
// appended alphabetically.
func RenderDigest(d *domain.Digest, snap *domain.Snapshot, at time.Time) *card.Card {
	count := d.Count()
	c := card.New(fmt.Sprintf("📊 Trend digest (%d)", count), card.ColorBlue)

	when := at
	if loc, err := time.LoadLocation(snap.App.Timezone); err == nil {
		when = at.In(loc)
	}
	c.Text(fmt.Sprintf("🕐 %s (%s)", when.Format("2006-01-02 15:04"), snap.App.Timezone))

	if count == 0 {
		c.Divider().Text("Nothing matched your keywords this time.")
	}

	if len(d.NewItems) > 0 {
		c.Divider().Heading(fmt.Sprintf("🆕 New items (%d)", len(d.NewItems)))
		for _, item := range lo.Slice(d.NewItems, 0, limit(snap.Report.MaxNewItems, 5)) {
			c.Link(item.Title, item.URL, item.SourceName)
		}
	}

	keywords := orderedKeywords(d.GroupedMatches, snap.Keywords)
	for _, keyword := range lo.Slice(keywords, 0, limit(snap.Report.MaxKeywords, 5)) {
		items := d.GroupedMatches[keyword]
		c.Divider().Heading(fmt.Sprintf("🔍 %s (%d)", keyword, len(items)))
		for _, item := range lo.Slice(items, 0, limit(snap.Report.MaxItemsPerKeyword, 3)) {
			c.Link(item.Title, item.URL, item.SourceName)
		}
	}

	c.Divider().Actions(
		card.Btn("⚙️ Settings", card.StyleDefault, card.ActionKindViewConfig, ""),
		card.Btn("⏸ Pause", card.StyleDanger, card.ActionKindPause, ""),
	)
	return c
}

// orderedKeywords lists non-empty groups, subscriber keywords first
func orderedKeywords(groups map[string][]domain.Item, preferred []string) []string {
	known := lo.Filter(preferred, func(k string, _ int) bool { return len(groups[k]) > 0 })

	var rest []string
	for k, items := range groups {
		if len(items) > 0 && !lo.Contains(preferred, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	return append(known, rest...)
}

func limit(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}
