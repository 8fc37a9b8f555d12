package feishu

import (
	"strings"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/samber/lo"
)

var headerTemplates = map[card.Color]string{
	card.ColorBlue:   "blue",
	card.ColorGreen:  "green",
	card.ColorOrange: "orange",
	card.ColorRed:    "red",
	card.ColorGrey:   "grey",
}

var buttonTypes = map[card.Style]string{
	card.StyleDefault: "default",
	card.StylePrimary: "primary",
	card.StyleDanger:  "danger",
}

// lark_md treats these as markup
var mdEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`", "~", `\~`)

// RenderCard converts a card into a Feishu interactive message card. Button
// values carry the action as a JSON object.
func RenderCard(c *card.Card) map[string]any {
	elements := make([]map[string]any, 0, len(c.Elements))
	for _, el := range c.Elements {
		switch el.Kind {
		case card.KindHeading:
			elements = append(elements, markdown("**"+mdEscaper.Replace(el.Text)+"**"))
		case card.KindText:
			elements = append(elements, markdown(mdEscaper.Replace(el.Text)))
		case card.KindLink:
			line := "• " + mdEscaper.Replace(el.Text)
			if el.URL != "" {
				line = "• [" + mdEscaper.Replace(el.Text) + "](" + el.URL + ")"
			}
			if el.Note != "" {
				line += " - " + mdEscaper.Replace(el.Note)
			}
			elements = append(elements, markdown(line))
		case card.KindDivider:
			elements = append(elements, map[string]any{"tag": "hr"})
		case card.KindActions:
			elements = append(elements, map[string]any{
				"tag": "action",
				"actions": lo.Map(el.Buttons, func(b card.Button, _ int) map[string]any {
					return map[string]any{
						"tag":   "button",
						"text":  map[string]any{"tag": "plain_text", "content": b.Text},
						"type":  lo.ValueOr(buttonTypes, b.Style, "default"),
						"value": b.Action,
					}
				}),
			})
		}
	}

	return map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"title":    map[string]any{"tag": "plain_text", "content": c.Title},
			"template": lo.ValueOr(headerTemplates, c.Color, "blue"),
		},
		"elements": elements,
	}
}

func markdown(content string) map[string]any {
	return map[string]any{
		"tag":  "div",
		"text": map[string]any{"tag": "lark_md", "content": content},
	}
}
