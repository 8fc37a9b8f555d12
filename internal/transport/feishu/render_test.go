package feishu

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

func TestRenderCardButtonsDecodeBack(t *testing.T) {
	c := card.New("📊 Digest", card.ColorOrange).
		Link("AI_chips", "https://example.com/a", "Zhihu").
		Divider().
		Actions(card.Btn("Remove", card.StyleDanger, card.ActionKindRemoveKeyword, "AI"))

	raw, err := json.Marshal(RenderCard(c))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var rendered struct {
		Header struct {
			Template string `json:"template"`
		} `json:"header"`
		Elements []struct {
			Tag  string `json:"tag"`
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
			Actions []struct {
				Type  string          `json:"type"`
				Value json.RawMessage `json:"value"`
			} `json:"actions"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(raw, &rendered); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if rendered.Header.Template != "orange" {
		t.Fatalf("unexpected header template %q", rendered.Header.Template)
	}
	if got := rendered.Elements[0].Text.Content; !strings.Contains(got, `[AI\_chips](https://example.com/a)`) {
		t.Fatalf("unexpected link markup %q", got)
	}
	if rendered.Elements[1].Tag != "hr" {
		t.Fatalf("expected divider, got %q", rendered.Elements[1].Tag)
	}

	btn := rendered.Elements[2].Actions[0]
	if btn.Type != "danger" {
		t.Fatalf("unexpected button type %q", btn.Type)
	}
	action, err := card.DecodeAction(btn.Value)
	if err != nil || action.Kind != card.ActionKindRemoveKeyword || action.Value != "AI" {
		t.Fatalf("button value does not decode back: %+v (%v)", action, err)
	}
}
