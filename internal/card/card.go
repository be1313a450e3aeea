// internal/card/card.go
package card

import "strconv"

// Suit identifies a card suit. The numeric order matters: suit parity is the
// card color, and suits two apart share a color.
type Suit int

const (
	Clubs    Suit = 0
	Diamonds Suit = 1
	Spades   Suit = 2
	Hearts   Suit = 3
)

const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

var suitLetters = [...]string{"C", "D", "S", "H"}

func (s Suit) String() string {
	if s < Clubs || s > Hearts {
		return "?"
	}
	return suitLetters[s]
}

// Color returns 0 for black suits and 1 for red suits.
func (s Suit) Color() int {
	return int(s) % 2
}

// Card is a single playing card. X and Y are the top-left corner of the card
// as last laid out by its owning stack.
type Card struct {
	Value int     `json:"value"`
	Suit  Suit    `json:"suit"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
}

// New creates a card at the origin.
func New(value int, suit Suit) *Card {
	return &Card{Value: value, Suit: suit}
}

func (c *Card) SetPosition(x, y float32) {
	c.X = x
	c.Y = y
}

func (c *Card) MovePosition(dx, dy float32) {
	c.X += dx
	c.Y += dy
}

// Valid reports whether the card has an in-range value and suit.
func (c *Card) Valid() bool {
	return c.Value >= Ace && c.Value <= King && c.Suit >= Clubs && c.Suit <= Hearts
}

func (c *Card) String() string {
	var v string
	switch c.Value {
	case Ace:
		v = "A"
	case Jack:
		v = "J"
	case 12:
		v = "Q"
	case King:
		v = "K"
	default:
		v = strconv.Itoa(c.Value)
	}
	return v + c.Suit.String()
}

// Metrics is the card size in pixels for the current screen layout.
type Metrics struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultMetrics is the card size used before the first resize.
var DefaultMetrics = Metrics{Width: 45, Height: 64}

// MetricsFor sizes cards so that `columns` cards fit across the screen with a
// margin of one card, keeping the default aspect ratio.
func MetricsFor(columns, screenWidth int) Metrics {
	if columns <= 0 || screenWidth <= 0 {
		return DefaultMetrics
	}
	w := screenWidth / (columns + 1)
	if w < 1 {
		w = 1
	}
	return Metrics{Width: w, Height: w * DefaultMetrics.Height / DefaultMetrics.Width}
}
