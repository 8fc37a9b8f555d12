// Package card holds the platform-neutral interactive message model. Each
// transport renders a Card into its own markup and maps button presses back
// into an Action.
package card

// Color is a header accent hint; transports without colors ignore it
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorGrey   Color = "grey"
)

// Style is a button emphasis hint
type Style string

const (
	StyleDefault Style = "default"
	StylePrimary Style = "primary"
	StyleDanger  Style = "danger"
)

// ElementKind discriminates card elements
type ElementKind int

const (
	KindHeading ElementKind = iota
	KindText
	KindLink
	KindDivider
	KindActions
)

// Button is a pressable control bound to an Action
type Button struct {
	Text   string
	Style  Style
	Action Action
}

// Element is one block of a card. Only the fields relevant to Kind are set.
type Element struct {
	Kind    ElementKind
	Text    string
	URL     string
	Note    string
	Buttons []Button
}

// Card is a titled sequence of elements
type Card struct {
	Title    string
	Color    Color
	Elements []Element
}

// New creates an empty card
func New(title string, color Color) *Card {
	return &Card{Title: title, Color: color}
}

// Heading appends an emphasized line
func (c *Card) Heading(text string) *Card {
	c.Elements = append(c.Elements, Element{Kind: KindHeading, Text: text})
	return c
}

// Text appends a plain paragraph
func (c *Card) Text(text string) *Card {
	c.Elements = append(c.Elements, Element{Kind: KindText, Text: text})
	return c
}

// Link appends a hyperlink line with an optional trailing note
func (c *Card) Link(title, url, note string) *Card {
	c.Elements = append(c.Elements, Element{Kind: KindLink, Text: title, URL: url, Note: note})
	return c
}

// Divider appends a separator
func (c *Card) Divider() *Card {
	c.Elements = append(c.Elements, Element{Kind: KindDivider})
	return c
}

// Actions appends a row of buttons. Empty rows are skipped.
func (c *Card) Actions(buttons ...Button) *Card {
	if len(buttons) == 0 {
		return c
	}
	c.Elements = append(c.Elements, Element{Kind: KindActions, Buttons: buttons})
	return c
}

// Btn builds a button
func Btn(text string, style Style, kind ActionKind, value string) Button {
	return Button{Text: text, Style: style, Action: Action{Kind: kind, Value: value}}
}

// PlainText flattens a card for transports or logs that cannot show markup
func (c *Card) PlainText() string {
	out := c.Title
	for _, el := range c.Elements {
		switch el.Kind {
		case KindHeading, KindText:
			out += "\n" + el.Text
		case KindLink:
			out += "\n• " + el.Text
			if el.Note != "" {
				out += " (" + el.Note + ")"
			}
			if el.URL != "" {
				out += "\n  " + el.URL
			}
		case KindDivider:
			out += "\n"
		}
	}
	return out
}
