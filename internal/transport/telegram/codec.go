package telegram

import (
	"strings"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Telegram limits callback data to 64 bytes, so actions travel as a two
// letter code plus an optional ":value". Keywords are capped at 60 bytes to
// fit.
const maxCallbackData = 64

var actionCodes = map[card.ActionKind]string{
	card.ActionKindShowMainMenu:        "mm",
	card.ActionKindShowStatus:          "st",
	card.ActionKindViewConfig:          "vc",
	card.ActionKindShowKeywordsMenu:    "km",
	card.ActionKindAddKeywordPrompt:    "ka",
	card.ActionKindRemoveKeyword:       "kr",
	card.ActionKindShowSourcesMenu:     "sm",
	card.ActionKindToggleSource:        "sx",
	card.ActionKindSaveSources:         "ss",
	card.ActionKindShowTimeMenu:        "tm",
	card.ActionKindAddPresetTime:       "tp",
	card.ActionKindRemoveTime:          "tr",
	card.ActionKindAddCustomTimePrompt: "tc",
	card.ActionKindToggleEnabled:       "te",
	card.ActionKindPause:               "pa",
	card.ActionKindTestPush:            "tt",
	card.ActionKindNoop:                "no",
}

var codeActions = lo.Invert(actionCodes)

// EncodeCallback packs an action into callback data
func EncodeCallback(a card.Action) (string, error) {
	code, ok := actionCodes[a.Kind]
	if !ok {
		return "", oops.With("action", a.Kind).Wrap(errors.ErrUnknownAction)
	}
	data := code
	if a.Value != "" {
		data += ":" + a.Value
	}
	if len(data) > maxCallbackData {
		return "", oops.With("action", a.Kind, "bytes", len(data)).Errorf("callback data exceeds %d bytes", maxCallbackData)
	}
	return data, nil
}

// DecodeCallback unpacks callback data. JSON payloads are accepted too.
func DecodeCallback(data string) (card.Action, error) {
	if strings.HasPrefix(data, "{") || strings.HasPrefix(data, `"`) {
		return card.DecodeAction([]byte(data))
	}

	code, value, _ := strings.Cut(data, ":")
	kind, ok := codeActions[code]
	if !ok {
		return card.Action{}, oops.With("callback_data", data).Wrap(errors.ErrUnknownAction)
	}
	return card.Action{Kind: kind, Value: value}, nil
}
