// internal/game/move.go
package game

import "fmt"

// MoveFlags modify how a Move is undone and replayed.
type MoveFlags int

const (
	FlagInvert       MoveFlags = 0x1 // the run was reversed in transit
	FlagUnhide       MoveFlags = 0x2 // the source's new top card was flipped face up
	FlagAddDealCount MoveFlags = 0x4 // the move consumed a redeal
)

const allFlags = FlagInvert | FlagUnhide | FlagAddDealCount

// Move records one committed transfer of cards between stacks. A fan-out
// (ToBegin != ToEnd) moved Count cards from From to each stack in
// [ToBegin, ToEnd], one after another.
type Move struct {
	From    int       `json:"from"`
	ToBegin int       `json:"toBegin"`
	ToEnd   int       `json:"toEnd"`
	Count   int       `json:"count"`
	Flags   MoveFlags `json:"flags"`
}

// NewMove builds a move to a single destination.
func NewMove(from, to, count int, invert, unhide bool) Move {
	m := Move{From: from, ToBegin: to, ToEnd: to, Count: count}
	if invert {
		m.Flags |= FlagInvert
	}
	if unhide {
		m.Flags |= FlagUnhide
	}
	return m
}

// NewFanOut builds a move that dealt count cards from `from` to every stack
// in [toBegin, toEnd].
func NewFanOut(from, toBegin, toEnd, count int) Move {
	return Move{From: from, ToBegin: toBegin, ToEnd: toEnd, Count: count}
}

func (m Move) Invert() bool       { return m.Flags&FlagInvert != 0 }
func (m Move) Unhide() bool       { return m.Flags&FlagUnhide != 0 }
func (m Move) AddDealCount() bool { return m.Flags&FlagAddDealCount != 0 }
func (m Move) IsFanOut() bool     { return m.ToBegin != m.ToEnd }

// valid reports whether the move is well formed for a table of n stacks.
func (m Move) valid(n int) bool {
	inRange := func(i int) bool { return i >= 0 && i < n }
	return inRange(m.From) && inRange(m.ToBegin) && inRange(m.ToEnd) &&
		m.ToBegin <= m.ToEnd && m.Count >= 1 && m.Flags&^allFlags == 0
}

func (m Move) String() string {
	if m.IsFanOut() {
		return fmt.Sprintf("%d->[%d..%d] x%d flags=%d", m.From, m.ToBegin, m.ToEnd, m.Count, m.Flags)
	}
	return fmt.Sprintf("%d->%d x%d flags=%d", m.From, m.ToBegin, m.Count, m.Flags)
}
