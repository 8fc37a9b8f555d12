package domain

import "time"

// FeedConfig describes the RSS archive of one subscriber
type FeedConfig struct {
	SubscriberID string    `json:"subscriber_id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}
