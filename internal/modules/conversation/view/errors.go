package view

import (
	stderrors "errors"
	"fmt"

	subscriberDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
)

const (
	NotInitializedText = "You have no configuration yet.\nSend /start to create one."
	FailureText        = "⚠️ Something went wrong, please try again later."
)

// ErrorText turns a configuration error into a corrective message
func ErrorText(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrSubscriberNotFound):
		return NotInitializedText
	case stderrors.Is(err, subscriberDomain.ErrKeywordLimit):
		return fmt.Sprintf("⚠️ Keyword limit reached (%d/%d). Remove a keyword before adding another.", subscriberDomain.MaxKeywords, subscriberDomain.MaxKeywords)
	case stderrors.Is(err, subscriberDomain.ErrEmptyKeyword):
		return "⚠️ Keywords must not be empty."
	case stderrors.Is(err, subscriberDomain.ErrKeywordTooLong):
		return fmt.Sprintf("⚠️ A keyword may be at most %d bytes long.", subscriberDomain.MaxKeywordBytes)
	case stderrors.Is(err, subscriberDomain.ErrDuplicateKeyword):
		return "⚠️ You already follow that keyword."
	case stderrors.Is(err, subscriberDomain.ErrKeywordNotFound):
		return "⚠️ That keyword is no longer in your list."
	case stderrors.Is(err, subscriberDomain.ErrInvalidDeliveryTime):
		return "⚠️ Times must be HH:MM between 00:00 and 23:59, e.g. 09:00 or 18:30."
	case stderrors.Is(err, subscriberDomain.ErrDuplicateTime):
		return "⚠️ That delivery time is already set."
	case stderrors.Is(err, subscriberDomain.ErrTimeNotFound):
		return "⚠️ That delivery time is no longer set."
	case stderrors.Is(err, subscriberDomain.ErrInvalidTimezone):
		return "⚠️ Your timezone is not recognised."
	case stderrors.Is(err, subscriberDomain.ErrNoSources):
		return "⚠️ Select at least one source."
	case stderrors.Is(err, subscriberDomain.ErrUnknownSource):
		return "⚠️ Unknown source.\n\nAvailable: " + AvailableSources()
	default:
		return FailureText
	}
}
