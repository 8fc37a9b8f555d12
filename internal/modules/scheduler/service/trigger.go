package service

import (
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/modules/scheduler/domain"
	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/samber/oops"
)

// ReferenceTrigger converts a civil HH:MM in timezone to the UTC hour and
// minute it corresponds to on the civil date of now. The offset in effect at
// that moment is baked in, so a daylight-saving change takes effect only when
// the trigger is derived again.
func ReferenceTrigger(now time.Time, deliveryTime, timezone string) (domain.Trigger, error) {
	hour, minute, err := subscriberDomain.ParseDeliveryTime(deliveryTime)
	if err != nil {
		return domain.Trigger{}, oops.With("delivery_time", deliveryTime).Wrap(err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return domain.Trigger{}, oops.With("timezone", timezone).Wrap(err)
	}

	local := now.In(loc)
	civil := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	ref := civil.UTC()

	return domain.Trigger{Hour: ref.Hour(), Minute: ref.Minute()}, nil
}

// CivilTime maps a trigger back to the HH:MM it represents in timezone on
// the UTC date of now.
func CivilTime(now time.Time, trigger domain.Trigger, timezone string) (string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", oops.With("timezone", timezone).Wrap(err)
	}

	ref := now.UTC()
	at := time.Date(ref.Year(), ref.Month(), ref.Day(), trigger.Hour, trigger.Minute, 0, 0, time.UTC).In(loc)
	return subscriberDomain.FormatDeliveryTime(at.Hour(), at.Minute()), nil
}
