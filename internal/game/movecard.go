// internal/game/movecard.go
package game

import (
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

// maxRunLength is the longest run that can be lifted at once.
const maxRunLength = 13

// moveSlop is how far the lead card may drift before a lift counts as a drag.
const moveSlop = 2

// MoveCard is a run lifted off a stack and following the pointer. Until it is
// dumped or released, the cards belong to no stack.
type MoveCard struct {
	origin *anchor.Anchor
	cards  []*card.Card

	startX, startY float32 // lead card position when lifted
	lastX, lastY   float32 // last pointer position
}

func newMoveCard(origin *anchor.Anchor, cards []*card.Card, x, y float32) *MoveCard {
	m := &MoveCard{origin: origin, cards: cards, lastX: x, lastY: y}
	if len(cards) > 0 {
		m.startX, m.startY = cards[0].X, cards[0].Y
	}
	return m
}

func (m *MoveCard) Origin() *anchor.Anchor {
	return m.origin
}

// Cards returns the lifted run, lead card first.
func (m *MoveCard) Cards() []*card.Card {
	return m.cards
}

func (m *MoveCard) Count() int {
	return len(m.cards)
}

// DragTo follows the pointer to (x, y).
func (m *MoveCard) DragTo(x, y float32) {
	m.DragBy(x-m.lastX, y-m.lastY)
	m.lastX, m.lastY = x, y
}

func (m *MoveCard) DragBy(dx, dy float32) {
	for _, c := range m.cards {
		c.MovePosition(dx, dy)
	}
}

// PlaceAt puts the lead card's corner at (x, y), keeping the run's fan.
func (m *MoveCard) PlaceAt(x, y float32) {
	if len(m.cards) == 0 {
		return
	}
	m.DragBy(x-m.cards[0].X, y-m.cards[0].Y)
}

// HasMoved reports whether the run was dragged away from where it was lifted.
func (m *MoveCard) HasMoved() bool {
	if len(m.cards) == 0 {
		return false
	}
	dx := m.cards[0].X - m.startX
	dy := m.cards[0].Y - m.startY
	return dx > moveSlop || dx < -moveSlop || dy > moveSlop || dy < -moveSlop
}

// Release puts the run back on its origin.
func (m *MoveCard) Release() {
	if len(m.cards) == 0 {
		return
	}
	cards := m.cards
	m.cards = nil
	m.origin.Push(cards...)
}

// Dump hands the run to dest. With unhide set the origin's new top card is
// turned face up.
func (m *MoveCard) Dump(dest *anchor.Anchor, unhide bool) {
	cards := m.cards
	m.cards = nil
	dest.Push(cards...)
	if unhide {
		m.origin.UnhideTop()
	}
}

// take empties the candidate without placing its cards anywhere.
func (m *MoveCard) take() []*card.Card {
	cards := m.cards
	m.cards = nil
	return cards
}

// SelectCard is an expanded view of a stack's movable run from which the
// player picks the card to lift from.
type SelectCard struct {
	origin   *anchor.Anchor
	cards    []*card.Card
	selected int // -1 when nothing is selected
	height   float32
}

func newSelectCard(origin *anchor.Anchor, cards []*card.Card, m card.Metrics) *SelectCard {
	return &SelectCard{origin: origin, cards: cards, selected: -1, height: float32(m.Height)}
}

func (s *SelectCard) Origin() *anchor.Anchor {
	return s.origin
}

func (s *SelectCard) Cards() []*card.Card {
	return s.cards
}

func (s *SelectCard) Selected() int {
	return s.selected
}

// Select marks the card at index i, counted from the deepest card.
func (s *SelectCard) Select(i int) bool {
	if i < 0 || i >= len(s.cards) {
		return false
	}
	s.selected = i
	return true
}

// Tap selects the topmost card under (x, y).
func (s *SelectCard) Tap(x, y float32) bool {
	for i := len(s.cards) - 1; i >= 0; i-- {
		c := s.cards[i]
		if y >= c.Y && y <= c.Y+s.height {
			return s.Select(i)
		}
	}
	return false
}

// Count is the number of cards that will travel.
func (s *SelectCard) Count() int {
	if s.selected < 0 {
		return len(s.cards)
	}
	return len(s.cards) - s.selected
}

// Dump returns the cards below the selection to the origin and hands over
// the selected card and everything above it.
func (s *SelectCard) Dump() []*card.Card {
	cards := s.cards
	s.cards = nil
	if s.selected > 0 {
		s.origin.Push(cards[:s.selected]...)
		return cards[s.selected:]
	}
	return cards
}

// Release returns every card to the origin.
func (s *SelectCard) Release() {
	cards := s.cards
	s.cards = nil
	s.origin.Push(cards...)
}
