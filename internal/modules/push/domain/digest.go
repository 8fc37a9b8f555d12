package domain

import (
	"time"

	"github.com/samber/lo"
)

// Item is one piece of content surfaced by the analyzer
type Item struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	SourceName string `json:"source_name"`
	IsNew      bool   `json:"is_new"`
}

// Digest is the analyzer result for one subscriber. A nil *Digest means no
// data was available, which differs from an empty digest.
type Digest struct {
	GroupedMatches map[string][]Item `json:"grouped_matches"`
	NewItems       []Item            `json:"new_items"`
}

// Count sums new items and grouped matches independently, so an item listed
// in both is counted twice.
func (d *Digest) Count() int {
	if d == nil {
		return 0
	}
	return len(d.NewItems) + lo.Sum(lo.MapToSlice(d.GroupedMatches, func(_ string, items []Item) int {
		return len(items)
	}))
}

// LogEntry is an append-only record of one push attempt
type LogEntry struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	PushedAt     time.Time `json:"pushed_at"`
	ItemCount    int       `json:"item_count"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// DeliveredItem is an item archived after a successful push
type DeliveredItem struct {
	SubscriberID string    `json:"subscriber_id"`
	Keyword      string    `json:"keyword,omitempty"`
	Item         Item      `json:"item"`
	DeliveredAt  time.Time `json:"delivered_at"`
}
