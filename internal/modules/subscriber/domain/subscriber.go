package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without zoneinfo

	"github.com/samber/lo"
)

const (
	MaxKeywords         = 10
	MaxKeywordBytes     = 60
	DefaultTimezone     = "Asia/Shanghai"
	DefaultDeliveryTime = "09:00"
)

var (
	DefaultKeywords = []string{"AI", "区块链"}
	DefaultSources  = []string{"zhihu", "weibo"}
	PresetTimes     = []string{"09:00", "12:00", "18:00", "21:00"}
)

var (
	ErrKeywordLimit        = fmt.Errorf("keyword limit reached (%d/%d)", MaxKeywords, MaxKeywords)
	ErrEmptyKeyword        = errors.New("keyword must not be empty")
	ErrKeywordTooLong      = fmt.Errorf("keyword is longer than %d bytes", MaxKeywordBytes)
	ErrDuplicateKeyword    = errors.New("keyword already exists")
	ErrKeywordNotFound     = errors.New("keyword not found")
	ErrInvalidDeliveryTime = errors.New("delivery time must be HH:MM between 00:00 and 23:59")
	ErrDuplicateTime       = errors.New("delivery time already exists")
	ErrTimeNotFound        = errors.New("delivery time not found")
	ErrInvalidTimezone     = errors.New("unknown timezone")
	ErrUnknownSource       = errors.New("source is not in the catalog")
	ErrNoSources           = errors.New("at least one source is required")
)

// Subscriber is the delivery configuration of one messaging platform user
type Subscriber struct {
	ID            string     `json:"id"`
	Keywords      []string   `json:"keywords"`
	Sources       []string   `json:"sources"`
	DeliveryTimes []string   `json:"delivery_times"`
	Timezone      string     `json:"timezone"`
	ReportMode    ReportMode `json:"report_mode"`
	Enabled       bool       `json:"enabled"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewDefault seeds a configuration for a first-time subscriber
func NewDefault(id, timezone string, now time.Time) *Subscriber {
	if ValidateTimezone(timezone) != nil {
		timezone = DefaultTimezone
	}
	return &Subscriber{
		ID:            id,
		Keywords:      append([]string(nil), DefaultKeywords...),
		Sources:       append([]string(nil), DefaultSources...),
		DeliveryTimes: []string{DefaultDeliveryTime},
		Timezone:      timezone,
		ReportMode:    ReportModeCurrent,
		Enabled:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy
func (s *Subscriber) Clone() *Subscriber {
	c := *s
	c.Keywords = append([]string(nil), s.Keywords...)
	c.Sources = append([]string(nil), s.Sources...)
	c.DeliveryTimes = append([]string(nil), s.DeliveryTimes...)
	return &c
}

// IsComplete reports whether a digest can be produced for the subscriber
func (s *Subscriber) IsComplete() bool {
	return len(s.Keywords) > 0 && len(s.Sources) > 0
}

// Validate checks every field invariant
func (s *Subscriber) Validate() error {
	if len(s.Keywords) > MaxKeywords {
		return ErrKeywordLimit
	}
	for _, k := range s.Keywords {
		if err := ValidateKeyword(k); err != nil {
			return err
		}
	}
	if len(lo.Uniq(s.Keywords)) != len(s.Keywords) {
		return ErrDuplicateKeyword
	}
	for _, src := range s.Sources {
		if !IsKnownSource(src) {
			return fmt.Errorf("%w: %s", ErrUnknownSource, src)
		}
	}
	for _, t := range s.DeliveryTimes {
		if _, _, err := ParseDeliveryTime(t); err != nil {
			return err
		}
	}
	if err := ValidateTimezone(s.Timezone); err != nil {
		return err
	}
	if !s.ReportMode.IsValid() {
		return ErrInvalidReportMode
	}
	return nil
}

// AddKeyword appends one keyword, enforcing the limit
func (s *Subscriber) AddKeyword(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if err := ValidateKeyword(keyword); err != nil {
		return err
	}
	if lo.Contains(s.Keywords, keyword) {
		return ErrDuplicateKeyword
	}
	if len(s.Keywords) >= MaxKeywords {
		return ErrKeywordLimit
	}
	s.Keywords = append(s.Keywords, keyword)
	return nil
}

// RemoveKeyword drops one keyword
func (s *Subscriber) RemoveKeyword(keyword string) error {
	if !lo.Contains(s.Keywords, keyword) {
		return ErrKeywordNotFound
	}
	s.Keywords = lo.Without(s.Keywords, keyword)
	return nil
}

// SetKeywords replaces the keyword list
func (s *Subscriber) SetKeywords(keywords []string) error {
	normalized, err := NormalizeKeywords(keywords)
	if err != nil {
		return err
	}
	s.Keywords = normalized
	return nil
}

// SetSources replaces the source set; ids must come from the catalog
func (s *Subscriber) SetSources(ids []string) error {
	if len(ids) == 0 {
		return ErrNoSources
	}
	for _, id := range ids {
		if !IsKnownSource(id) {
			return fmt.Errorf("%w: %s", ErrUnknownSource, id)
		}
	}
	s.Sources = SortSources(ids)
	return nil
}

// AddDeliveryTime adds one HH:MM time, normalizing H:MM input
func (s *Subscriber) AddDeliveryTime(value string) error {
	normalized, err := NormalizeDeliveryTime(value)
	if err != nil {
		return err
	}
	if lo.Contains(s.DeliveryTimes, normalized) {
		return ErrDuplicateTime
	}
	s.DeliveryTimes = SortTimes(append(s.DeliveryTimes, normalized))
	return nil
}

// RemoveDeliveryTime drops one time
func (s *Subscriber) RemoveDeliveryTime(value string) error {
	normalized, err := NormalizeDeliveryTime(value)
	if err != nil {
		return err
	}
	if !lo.Contains(s.DeliveryTimes, normalized) {
		return ErrTimeNotFound
	}
	s.DeliveryTimes = lo.Without(s.DeliveryTimes, normalized)
	return nil
}

// SetDeliveryTimes replaces the delivery times
func (s *Subscriber) SetDeliveryTimes(values []string) error {
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		t, err := NormalizeDeliveryTime(v)
		if err != nil {
			return err
		}
		normalized = append(normalized, t)
	}
	s.DeliveryTimes = SortTimes(lo.Uniq(normalized))
	return nil
}

// ValidateKeyword checks a single keyword
func ValidateKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return ErrEmptyKeyword
	}
	if len(keyword) > MaxKeywordBytes {
		return ErrKeywordTooLong
	}
	return nil
}

// NormalizeKeywords trims, drops blanks, deduplicates in order and enforces the limit
func NormalizeKeywords(keywords []string) ([]string, error) {
	cleaned := lo.Uniq(lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.TrimSpace(k)
		return k, k != ""
	}))
	if len(cleaned) > MaxKeywords {
		return nil, ErrKeywordLimit
	}
	for _, k := range cleaned {
		if err := ValidateKeyword(k); err != nil {
			return nil, err
		}
	}
	return cleaned, nil
}

// ParseDeliveryTime parses a civil H:MM or HH:MM time
func ParseDeliveryTime(value string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !isDigits(h) || !isDigits(m) {
		return 0, 0, ErrInvalidDeliveryTime
	}
	hour, errH := strconv.Atoi(h)
	minute, errM := strconv.Atoi(m)
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidDeliveryTime
	}
	return hour, minute, nil
}

func isDigits(value string) bool {
	return strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// NormalizeDeliveryTime returns value in canonical HH:MM form
func NormalizeDeliveryTime(value string) (string, error) {
	hour, minute, err := ParseDeliveryTime(value)
	if err != nil {
		return "", err
	}
	return FormatDeliveryTime(hour, minute), nil
}

// FormatDeliveryTime renders hour and minute as HH:MM
func FormatDeliveryTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// SortTimes orders HH:MM strings chronologically
func SortTimes(times []string) []string {
	out := slices.Clone(times)
	slices.Sort(out)
	return out
}

// ValidateTimezone checks that name resolves to an IANA zone
func ValidateTimezone(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
	}
	return nil
}
