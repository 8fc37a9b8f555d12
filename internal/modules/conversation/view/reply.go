package view

import (
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

// Reply is the single response to one inbound message or button press. A
// reply with neither Text nor Card sends nothing; it is used when the
// response was already delivered another way (a digest, a guidance message)
// or for noop buttons.
type Reply struct {
	OK   bool
	Text string
	Card *card.Card
}

// TextReply builds a text reply
func TextReply(ok bool, text string) Reply {
	return Reply{OK: ok, Text: text}
}

// CardReply builds a successful card reply
func CardReply(c *card.Card) Reply {
	return Reply{OK: true, Card: c}
}

// Empty reports whether there is nothing to send
func (r Reply) Empty() bool {
	return r.Text == "" && r.Card == nil
}
