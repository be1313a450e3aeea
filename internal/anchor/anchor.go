// internal/anchor/anchor.go
package anchor

import (
	"fmt"

	"github.com/jason-s-yu/solitaire/internal/card"
)

// Anchor is a stack of cards on the table. Its behavior is entirely described
// by its Policy; the cards slice is ordered bottom to top and the lowest
// `hidden` cards are face down.
type Anchor struct {
	ID     int
	Policy Policy

	cards  []*card.Card
	hidden int
	done   bool

	// FreeSpaces reports the number of free auxiliary stacks for
	// PackLimitByFree. Nil counts as zero.
	FreeSpaces func() int
	// Notify is called after a push when Policy.NotifyOnAdd is set.
	Notify func(a *Anchor)

	metrics *card.Metrics
	geom    geometry
}

// New creates an empty stack. The metrics pointer is shared by every stack of
// a session so a resize reaches all of them.
func New(id int, p Policy, m *card.Metrics) *Anchor {
	if m == nil {
		def := card.DefaultMetrics
		m = &def
	}
	return &Anchor{
		ID:      id,
		Policy:  p,
		metrics: m,
		geom: geometry{
			leftEdge:  -1,
			rightEdge: -1,
			bottom:    -1,
			showing:   1,
		},
	}
}

func (a *Anchor) Count() int {
	return len(a.cards)
}

func (a *Anchor) Hidden() int {
	return a.hidden
}

func (a *Anchor) Visible() int {
	return len(a.cards) - a.hidden
}

// Cards returns a copy of the stack, bottom first.
func (a *Anchor) Cards() []*card.Card {
	out := make([]*card.Card, len(a.cards))
	copy(out, a.cards)
	return out
}

func (a *Anchor) Top() *card.Card {
	if len(a.cards) == 0 {
		return nil
	}
	return a.cards[len(a.cards)-1]
}

func (a *Anchor) CardAt(i int) *card.Card {
	if i < 0 || i >= len(a.cards) {
		return nil
	}
	return a.cards[i]
}

// Done marks a draw pile that can no longer deal.
func (a *Anchor) Done() bool {
	return a.done
}

func (a *Anchor) SetDone(done bool) {
	a.done = done
}

// Push adds cards on top, first element lowest. Adding cards clears Done.
func (a *Anchor) Push(cards ...*card.Card) {
	if len(cards) == 0 {
		return
	}
	a.cards = append(a.cards, cards...)
	a.done = false
	a.layout()
	if a.Policy.NotifyOnAdd && a.Notify != nil {
		a.Notify(a)
	}
}

// Pop removes the top card, or returns nil when the stack is empty.
func (a *Anchor) Pop() *card.Card {
	n := len(a.cards)
	if n == 0 {
		return nil
	}
	c := a.cards[n-1]
	a.cards = a.cards[:n-1]
	if a.hidden > len(a.cards) {
		a.hidden = len(a.cards)
	}
	a.layout()
	return c
}

// PopRun removes the top n cards and returns them bottom first.
func (a *Anchor) PopRun(n int) []*card.Card {
	if n < 0 || n > len(a.cards) {
		panic(fmt.Sprintf("anchor %d: pop %d of %d cards", a.ID, n, len(a.cards)))
	}
	start := len(a.cards) - n
	run := make([]*card.Card, n)
	copy(run, a.cards[start:])
	a.cards = a.cards[:start]
	if a.hidden > len(a.cards) {
		a.hidden = len(a.cards)
	}
	a.layout()
	return run
}

// Clear empties the stack and resets its hidden count.
func (a *Anchor) Clear() {
	a.cards = a.cards[:0]
	a.hidden = 0
	a.done = false
	a.layout()
}

// SetHidden sets the number of face-down cards, clamped to the stack size.
func (a *Anchor) SetHidden(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(a.cards) {
		n = len(a.cards)
	}
	a.hidden = n
	a.layout()
}

// UnhideTop flips the top card face up when every card in the stack is
// hidden. It reports whether a card was flipped.
func (a *Anchor) UnhideTop() bool {
	if len(a.cards) > 0 && a.hidden > 0 && a.hidden == len(a.cards) {
		a.hidden--
		a.layout()
		return true
	}
	return false
}

// FaceUp reports whether the card at index i renders face up.
func (a *Anchor) FaceUp(i int) bool {
	switch a.Policy.Display {
	case DisplayAll:
		return true
	case DisplayHide:
		return false
	case DisplayMix:
		return i >= a.hidden
	case DisplayOne:
		return i >= len(a.cards)-a.geom.showing
	}
	return false
}

// CanBuild reports whether c may be placed on the current top card.
func (a *Anchor) CanBuild(c *card.Card) bool {
	top := a.Top()
	if top == nil {
		switch a.Policy.Start {
		case StartKing:
			return c.Value == card.King
		case StartAce:
			return c.Value == card.Ace
		}
		return true
	}
	return seqOK(a.Policy.BuildSeq, a.Policy.BuildWrap, top, c) &&
		suitOK(a.Policy.BuildSuit, top, c)
}

// acceptsCount applies the dropoff and capacity policy to a run of n cards.
func (a *Anchor) acceptsCount(n int) bool {
	if n <= 0 {
		return false
	}
	if a.Policy.Capacity > 0 && len(a.cards)+n > a.Policy.Capacity {
		return false
	}
	switch a.Policy.Dropoff {
	case PackOne:
		return n == 1
	case PackMulti:
		return true
	case PackLimitByFree:
		if len(a.cards) == 0 {
			return a.freeSpaces() >= n
		}
		return true
	}
	return false
}

// AcceptsRun applies the rule policy to a run without geometry.
func (a *Anchor) AcceptsRun(run []*card.Card) bool {
	return a.acceptsCount(len(run)) && a.CanBuild(run[0])
}

// AcceptsCard is the single-card rule check used by flings and auto-sinking.
func (a *Anchor) AcceptsCard(c *card.Card) bool {
	return c != nil && a.AcceptsRun([]*card.Card{c})
}

// CanAccept reports whether the run, positioned where it currently is, may be
// dropped here. close widens the drop box by half a card per step.
func (a *Anchor) CanAccept(run []*card.Card, close int) bool {
	if !a.acceptsCount(len(run)) {
		return false
	}
	lead := run[0]
	cx := lead.X + float32(a.metrics.Width)/2
	cy := lead.Y + float32(a.metrics.Height)/2
	return a.IsOverCard(cx, cy, close) && a.CanBuild(lead)
}

// MovableRunLength is the number of cards at the top that may be picked up
// together. The scan never reaches into hidden cards.
func (a *Anchor) MovableRunLength() int {
	visible := a.Visible()
	if visible == 0 || a.Policy.Pickup == PackNone {
		return 0
	}
	n := 1
	for i := len(a.cards) - 1; n < visible; i-- {
		upper, lower := a.cards[i], a.cards[i-1]
		if !seqOK(a.Policy.MoveSeq, a.Policy.MoveWrap, upper, lower) ||
			!suitOK(a.Policy.MoveSuit, upper, lower) {
			break
		}
		n++
	}
	switch a.Policy.Pickup {
	case PackOne:
		n = min(n, 1)
	case PackLimitByFree:
		n = min(n, a.freeSpaces()+1)
	}
	return n
}

func (a *Anchor) freeSpaces() int {
	if a.FreeSpaces == nil {
		return 0
	}
	return a.FreeSpaces()
}

func (a *Anchor) String() string {
	return fmt.Sprintf("anchor %d (%d cards, %d hidden)", a.ID, len(a.cards), a.hidden)
}
