package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentFetches = 4

type fetchedItem struct {
	item      pushDomain.Item
	key       string
	published *time.Time
}

// FeedAnalyzer is the built-in analyzer: it reads one RSS/Atom feed per
// selected source and matches keywords against item titles. An item is new
// when it was absent from the previous fetch of the same source for the same
// subscriber; the first fetch only records a baseline.
type FeedAnalyzer struct {
	client *http.Client
	now    func() time.Time
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]map[string]struct{}
}

// NewFeedAnalyzer creates a feed analyzer with a per-request timeout
func NewFeedAnalyzer(fetchTimeout time.Duration) *FeedAnalyzer {
	return &FeedAnalyzer{
		client: &http.Client{Timeout: fetchTimeout},
		now:    time.Now,
		logger: slog.Default(),
		seen:   make(map[string]map[string]struct{}),
	}
}

// SetLogger sets the logger
func (a *FeedAnalyzer) SetLogger(logger *slog.Logger) {
	a.logger = logger
}

func (a *FeedAnalyzer) Analyze(ctx context.Context, snap *pushDomain.Snapshot) (*pushDomain.Digest, error) {
	sources := snap.Platforms.Sources
	results := make([][]fetchedItem, len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, src := range sources {
		url := snap.Platforms.Feeds[src.ID]
		if url == "" {
			a.logger.Warn("No feed configured for source", "source", src.ID)
			continue
		}
		g.Go(func() error {
			items, err := a.fetch(ctx, url, src.Name)
			if err != nil {
				a.logger.Warn("Feed fetch failed", "source", src.ID, "url", url, "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if lo.EveryBy(results, func(items []fetchedItem) bool { return len(items) == 0 }) {
		return nil, nil
	}

	for i, src := range sources {
		a.markNew(snap.SubscriberID+"/"+src.ID, results[i])
	}

	current := lo.Flatten(results)
	reportable := a.filterByMode(current, snap)

	digest := &pushDomain.Digest{GroupedMatches: map[string][]pushDomain.Item{}}
	for _, keyword := range snap.Keywords {
		matches := lo.UniqBy(lo.Filter(reportable, func(f fetchedItem, _ int) bool {
			return titleMatches(f.item.Title, keyword)
		}), func(f fetchedItem) string { return f.key })
		if len(matches) > 0 {
			digest.GroupedMatches[keyword] = lo.Map(matches, func(f fetchedItem, _ int) pushDomain.Item { return f.item })
		}
	}

	digest.NewItems = lo.FilterMap(lo.UniqBy(current, func(f fetchedItem) string { return f.key }), func(f fetchedItem, _ int) (pushDomain.Item, bool) {
		return f.item, f.item.IsNew && lo.SomeBy(snap.Keywords, func(k string) bool { return titleMatches(f.item.Title, k) })
	})

	return digest, nil
}

func (a *FeedAnalyzer) fetch(ctx context.Context, url, sourceName string) ([]fetchedItem, error) {
	parser := gofeed.NewParser()
	parser.Client = a.client

	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	return lo.FilterMap(feed.Items, func(it *gofeed.Item, _ int) (fetchedItem, bool) {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return fetchedItem{}, false
		}
		key := lo.Ternary(it.Link != "", it.Link, title)
		return fetchedItem{
			item:      pushDomain.Item{Title: title, URL: it.Link, SourceName: sourceName},
			key:       key,
			published: it.PublishedParsed,
		}, true
	}), nil
}

// markNew flags items unseen since the previous fetch and replaces the
// remembered set with the current one.
func (a *FeedAnalyzer) markNew(key string, items []fetchedItem) {
	if len(items) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	previous, hadBaseline := a.seen[key]
	next := make(map[string]struct{}, len(items))
	for i := range items {
		if _, ok := previous[items[i].key]; hadBaseline && !ok {
			items[i].item.IsNew = true
		}
		next[items[i].key] = struct{}{}
	}
	a.seen[key] = next
}

func (a *FeedAnalyzer) filterByMode(items []fetchedItem, snap *pushDomain.Snapshot) []fetchedItem {
	switch snap.Report.Mode {
	case subscriberDomain.ReportModeIncremental:
		return lo.Filter(items, func(f fetchedItem, _ int) bool { return f.item.IsNew })
	case subscriberDomain.ReportModeDaily:
		loc, err := time.LoadLocation(snap.App.Timezone)
		if err != nil {
			loc = time.UTC
		}
		today := a.now().In(loc).Format(time.DateOnly)
		return lo.Filter(items, func(f fetchedItem, _ int) bool {
			return f.published == nil || f.published.In(loc).Format(time.DateOnly) == today
		})
	default:
		return items
	}
}

func titleMatches(title, keyword string) bool {
	return keyword != "" && strings.Contains(strings.ToLower(title), strings.ToLower(keyword))
}
