//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Status is the recorded result of one push attempt
// ENUM(success,failed)
type Status string

// Outcome explains how a push attempt ended
// ENUM(skipped,incomplete,empty,delivered,failed)
type Outcome string
