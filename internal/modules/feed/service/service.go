package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/feed/domain"
	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const DefaultLimit = 50

// Archive is the storage the feed is rendered from
type Archive interface {
	GetSubscriber(ctx context.Context, subscriberID string) (*subscriberDomain.Subscriber, error)
	RecentDelivered(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.DeliveredItem, error)
}

// Service renders each subscriber's delivered items as an RSS feed
type Service struct {
	archive Archive
	limit   int
}

// New creates a new feed service
func New(archive Archive, limit int) *Service {
	return &Service{
		archive: archive,
		limit:   lo.Ternary(limit > 0, limit, DefaultLimit),
	}
}

// GenerateFeed generates the RSS feed of a subscriber's latest deliveries
func (s *Service) GenerateFeed(ctx context.Context, subscriberID string, baseURL string) (*feeds.Feed, error) {
	sub, err := s.archive.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "subscriber not found").Wrap(err)
	}

	delivered, err := s.archive.RecentDelivered(ctx, subscriberID, s.limit)
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to get delivered items").Wrap(err)
	}

	cfg := s.config(sub, delivered, baseURL)
	feed := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: cfg.Link},
		Description: fmt.Sprintf("Trend digest items for keywords: %s", strings.Join(sub.Keywords, ", ")),
		Created:     cfg.Created,
		Updated:     cfg.Updated,
	}

	feed.Items = lo.Map(delivered, func(d *pushDomain.DeliveredItem, _ int) *feeds.Item {
		return s.toFeedItem(d)
	})
	return feed, nil
}

func (s *Service) config(sub *subscriberDomain.Subscriber, delivered []*pushDomain.DeliveredItem, baseURL string) domain.FeedConfig {
	updated := sub.UpdatedAt
	if len(delivered) > 0 {
		updated = delivered[0].DeliveredAt
	}
	return domain.FeedConfig{
		SubscriberID: sub.ID,
		Title:        "Trend digest",
		Link:         fmt.Sprintf("%s/rss/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(sub.ID)),
		Created:      sub.CreatedAt,
		Updated:      updated,
	}
}

func (s *Service) toFeedItem(d *pushDomain.DeliveredItem) *feeds.Item {
	var description string
	switch {
	case d.Keyword != "":
		description = fmt.Sprintf("Matched %q on %s", d.Keyword, d.Item.SourceName)
	case d.Item.IsNew:
		description = fmt.Sprintf("New on %s", d.Item.SourceName)
	default:
		description = d.Item.SourceName
	}

	content := fmt.Sprintf("<p>%s</p>", html.EscapeString(description))
	if d.Item.URL != "" {
		content += fmt.Sprintf(`<p><a href="%s">%s</a></p>`, html.EscapeString(d.Item.URL), html.EscapeString(d.Item.Title))
	}

	return &feeds.Item{
		Title:       d.Item.Title,
		Link:        &feeds.Link{Href: d.Item.URL},
		Description: description,
		Content:     content,
		Author:      &feeds.Author{Name: d.Item.SourceName},
		Created:     d.DeliveredAt,
		Id:          fmt.Sprintf("%s-%d-%s", d.SubscriberID, d.DeliveredAt.Unix(), lo.Ternary(d.Item.URL != "", d.Item.URL, d.Item.Title)),
	}
}
