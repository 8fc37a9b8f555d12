package telegram

import (
	"html"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
)

// maxMessageLength is Telegram's limit in characters after entity parsing
const maxMessageLength = 4096

// RenderCard converts a card into HTML text and an inline keyboard. Buttons
// whose action cannot be encoded are dropped and logged.
func RenderCard(c *card.Card) (string, *models.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(c.Title) + "</b>")

	var keyboard [][]models.InlineKeyboardButton
	for _, el := range c.Elements {
		switch el.Kind {
		case card.KindHeading:
			b.WriteString("\n\n<b>" + html.EscapeString(el.Text) + "</b>")
		case card.KindText:
			b.WriteString("\n" + html.EscapeString(el.Text))
		case card.KindLink:
			b.WriteString("\n• ")
			if el.URL != "" {
				b.WriteString(`<a href="` + html.EscapeString(el.URL) + `">` + html.EscapeString(el.Text) + "</a>")
			} else {
				b.WriteString(html.EscapeString(el.Text))
			}
			if el.Note != "" {
				b.WriteString(" <i>" + html.EscapeString(el.Note) + "</i>")
			}
		case card.KindDivider:
			b.WriteString("\n")
		case card.KindActions:
			if row := renderRow(el.Buttons); len(row) > 0 {
				keyboard = append(keyboard, row)
			}
		}
	}

	text := b.String()
	if len([]rune(text)) > maxMessageLength {
		text = html.EscapeString(truncate(c.PlainText(), maxMessageLength-100))
	}

	if len(keyboard) == 0 {
		return text, nil
	}
	return text, &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func renderRow(buttons []card.Button) []models.InlineKeyboardButton {
	row := make([]models.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		data, err := EncodeCallback(btn.Action)
		if err != nil {
			slog.Warn("Dropping button", "text", btn.Text, "error", err)
			continue
		}
		row = append(row, models.InlineKeyboardButton{Text: btn.Text, CallbackData: data})
	}
	return row
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
