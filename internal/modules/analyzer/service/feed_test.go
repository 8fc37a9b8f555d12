package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
)

func rssBody(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>hot</title>`)
	for i, title := range titles {
		fmt.Fprintf(&b, `<item><title>%s</title><link>https://example.com/%d</link></item>`, title, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func newFeedServer(t *testing.T, bodies ...string) *httptest.Server {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, bodies[n])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func feedSnapshot(url string, mode subscriberDomain.ReportMode, keywords ...string) *pushDomain.Snapshot {
	return &pushDomain.Snapshot{
		SubscriberID: "u1",
		Keywords:     keywords,
		App:          pushDomain.AppOptions{Timezone: "Asia/Shanghai"},
		Report:       pushDomain.ReportOptions{Mode: mode},
		Platforms: pushDomain.PlatformOptions{
			Sources: []pushDomain.SourceRef{{ID: "zhihu", Name: "Zhihu"}},
			Feeds:   map[string]string{"zhihu": url},
		},
	}
}

func newTestFeedAnalyzer() *FeedAnalyzer {
	a := NewFeedAnalyzer(5 * time.Second)
	a.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return a
}

func TestFeedAnalyzerBaselineThenNewItems(t *testing.T) {
	srv := newFeedServer(t,
		rssBody("AI chips ship", "Weather today"),
		rssBody("AI chips ship", "New AI model released", "Weather today"),
	)
	a := newTestFeedAnalyzer()
	snap := feedSnapshot(srv.URL, subscriberDomain.ReportModeCurrent, "ai")

	first, err := a.Analyze(context.Background(), snap)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if len(first.NewItems) != 0 {
		t.Fatalf("baseline fetch must not report new items, got %d", len(first.NewItems))
	}
	if got := len(first.GroupedMatches["ai"]); got != 1 {
		t.Fatalf("expected 1 match on baseline, got %d", got)
	}

	second, err := a.Analyze(context.Background(), snap)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if len(second.NewItems) != 1 || second.NewItems[0].Title != "New AI model released" {
		t.Fatalf("unexpected new items: %+v", second.NewItems)
	}
	if got := len(second.GroupedMatches["ai"]); got != 2 {
		t.Fatalf("expected 2 matches, got %d", got)
	}
	if second.GroupedMatches["ai"][0].SourceName != "Zhihu" {
		t.Fatalf("source name not carried: %+v", second.GroupedMatches["ai"][0])
	}
}

func TestFeedAnalyzerIncrementalKeepsOnlyNew(t *testing.T) {
	srv := newFeedServer(t,
		rssBody("AI one"),
		rssBody("AI one", "AI two"),
	)
	a := newTestFeedAnalyzer()
	snap := feedSnapshot(srv.URL, subscriberDomain.ReportModeIncremental, "AI")

	if _, err := a.Analyze(context.Background(), snap); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	digest, err := a.Analyze(context.Background(), snap)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	matches := digest.GroupedMatches["AI"]
	if len(matches) != 1 || matches[0].Title != "AI two" {
		t.Fatalf("incremental mode should only report new items: %+v", matches)
	}
}

func TestFeedAnalyzerAllSourcesFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	digest, err := newTestFeedAnalyzer().Analyze(context.Background(), feedSnapshot(srv.URL, subscriberDomain.ReportModeCurrent, "AI"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if digest != nil {
		t.Fatalf("expected no digest when every source fails, got %+v", digest)
	}
}
