//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// InputMode is what the next plain-text message from a subscriber will be
// consumed as
// ENUM(none,waiting_keyword,waiting_time)
type InputMode string
