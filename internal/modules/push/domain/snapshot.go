package domain

import (
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
)

// Snapshot is the effective configuration handed to an analyzer: subscriber
// fields merged over the base template. ConfigFile and KeywordsFile point to
// scratch copies that live until Release is called.
type Snapshot struct {
	SubscriberID string          `koanf:"subscriber_id" yaml:"subscriber_id"`
	Keywords     []string        `koanf:"keywords" yaml:"keywords"`
	App          AppOptions      `koanf:"app" yaml:"app"`
	Report       ReportOptions   `koanf:"report" yaml:"report"`
	Platforms    PlatformOptions `koanf:"platforms" yaml:"platforms"`

	ConfigFile   string `koanf:"-" yaml:"-"`
	KeywordsFile string `koanf:"-" yaml:"-"`

	release func()
}

type AppOptions struct {
	Timezone string `koanf:"timezone" yaml:"timezone"`
}

type ReportOptions struct {
	Mode               subscriberDomain.ReportMode `koanf:"mode" yaml:"mode"`
	MaxNewItems        int                         `koanf:"max_new_items" yaml:"max_new_items"`
	MaxKeywords        int                         `koanf:"max_keywords" yaml:"max_keywords"`
	MaxItemsPerKeyword int                         `koanf:"max_items_per_keyword" yaml:"max_items_per_keyword"`
}

type PlatformOptions struct {
	Sources []SourceRef       `koanf:"sources" yaml:"sources"`
	Feeds   map[string]string `koanf:"feeds" yaml:"feeds"`
}

// SourceRef names one selected source
type SourceRef struct {
	ID   string `koanf:"id" yaml:"id"`
	Name string `koanf:"name" yaml:"name"`
}

// SetRelease installs the cleanup run by Release
func (s *Snapshot) SetRelease(fn func()) {
	s.release = fn
}

// Release frees scratch resources; safe to call more than once
func (s *Snapshot) Release() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}
