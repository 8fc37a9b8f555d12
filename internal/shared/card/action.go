package card

import (
	"bytes"
	"encoding/json"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Action is what a button press asks for. Value carries the argument of
// kinds that need one: a keyword, a source id or an HH:MM time.
type Action struct {
	Kind  ActionKind `json:"action"`
	Value string     `json:"value,omitempty"`
}

// wireAction also accepts the per-kind argument keys older cards carried.
type wireAction struct {
	Action  string `json:"action"`
	Value   string `json:"value"`
	Keyword string `json:"keyword"`
	Source  string `json:"source"`
	Time    string `json:"time"`
}

// EncodeAction renders the action as a compact JSON object
func EncodeAction(a Action) string {
	data, _ := json.Marshal(a)
	return string(data)
}

// DecodeAction parses a callback value. The payload may be a JSON object, or
// a JSON string wrapping the object (some platforms encode button values
// twice); at most two string layers are unwrapped.
func DecodeAction(raw []byte) (Action, error) {
	payload := bytes.TrimSpace(raw)

	for i := 0; i < 2 && len(payload) > 0 && payload[0] == '"'; i++ {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return Action{}, oops.With("context", "decoding action string").Wrap(err)
		}
		payload = bytes.TrimSpace([]byte(inner))
	}

	var w wireAction
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, oops.With("context", "decoding action object").Wrap(err)
	}

	kind, err := ParseActionKind(w.Action)
	if err != nil {
		return Action{}, oops.With("action", w.Action).Wrap(errors.ErrUnknownAction)
	}

	value := w.Value
	for _, v := range []string{w.Keyword, w.Source, w.Time} {
		if value == "" {
			value = v
		}
	}

	return Action{Kind: kind, Value: value}, nil
}
