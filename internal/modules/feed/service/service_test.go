package service

import (
	"context"
	"strings"
	"testing"
	"time"

	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/repository"
)

func TestGenerateFeed(t *testing.T) {
	repo, err := repository.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.SaveSubscriber(ctx, subscriberDomain.NewDefault("u 1", "UTC", now)); err != nil {
		t.Fatalf("save: %v", err)
	}
	items := []pushDomain.DeliveredItem{
		{SubscriberID: "u 1", Keyword: "AI", DeliveredAt: now, Item: pushDomain.Item{Title: "AI <chips>", URL: "https://example.com/a", SourceName: "Zhihu"}},
		{SubscriberID: "u 1", DeliveredAt: now, Item: pushDomain.Item{Title: "Fresh", URL: "https://example.com/b", SourceName: "Weibo", IsNew: true}},
	}
	if err := repo.SaveDelivered(ctx, "u 1", items); err != nil {
		t.Fatalf("archive: %v", err)
	}

	feed, err := New(repo, 1).GenerateFeed(ctx, "u 1", "https://bot.example.com/")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if feed.Link.Href != "https://bot.example.com/rss/u%201" {
		t.Fatalf("unexpected link %s", feed.Link.Href)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("limit not applied, got %d items", len(feed.Items))
	}

	rss, err := feed.ToRss()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(rss, "<rss") {
		t.Fatalf("not an RSS document:\n%s", rss)
	}
}

func TestGenerateFeedUnknownSubscriber(t *testing.T) {
	repo, err := repository.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if _, err := New(repo, 0).GenerateFeed(context.Background(), "ghost", "http://x"); err == nil {
		t.Fatal("expected an error for an unknown subscriber")
	}
}

func TestFeedItemContentIsEscaped(t *testing.T) {
	item := New(nil, 0).toFeedItem(&pushDomain.DeliveredItem{
		SubscriberID: "u1",
		Keyword:      "AI",
		Item:         pushDomain.Item{Title: "<b>x</b>", URL: "https://example.com/?a=1&b=2", SourceName: "Zhihu"},
	})
	if strings.Contains(item.Content, "<b>") || !strings.Contains(item.Content, "&amp;b=2") {
		t.Fatalf("content not escaped: %s", item.Content)
	}
}
