// internal/anchor/policy.go
package anchor

import "github.com/jason-s-yu/solitaire/internal/card"

// StartRule decides which card may be placed on an empty stack.
type StartRule int

const (
	StartAny  StartRule = 1
	StartKing StartRule = 2
	StartAce  StartRule = 3
)

// SeqRule is the rank relationship between two adjacent cards.
type SeqRule int

const (
	SeqAny SeqRule = 1
	SeqSeq SeqRule = 2 // one apart in either direction
	SeqAsc SeqRule = 3
	SeqDsc SeqRule = 4
)

// SuitRule is the suit relationship between two adjacent cards.
type SuitRule int

const (
	SuitAny   SuitRule = 1
	SuitRB    SuitRule = 2 // alternating colors
	SuitOther SuitRule = 3 // any other suit
	SuitColor SuitRule = 4 // same color, different suit
	SuitSame  SuitRule = 5
)

// PackRule limits how many cards may be picked up from or dropped onto a stack.
type PackRule int

const (
	PackNone        PackRule = 1
	PackOne         PackRule = 2
	PackMulti       PackRule = 3
	PackLimitByFree PackRule = 4 // bounded by the number of free auxiliary stacks
)

// DisplayRule decides which cards are rendered face up.
type DisplayRule int

const (
	DisplayAll  DisplayRule = 1
	DisplayHide DisplayRule = 2
	DisplayMix  DisplayRule = 3 // hidden cards face down, the rest face up
	DisplayOne  DisplayRule = 4 // only the showing cards at the top face up
)

// Spread is how cards are laid out relative to the stack origin.
type Spread int

const (
	SpreadNone  Spread = iota // squared pile
	SpreadDown                // cascade, hidden cards as thin slivers
	SpreadRight               // waste fan of the showing cards
)

// Policy is the full rule set of a stack. Every stack in every variant is
// described by one of these.
type Policy struct {
	Start StartRule

	BuildSeq  SeqRule
	BuildSuit SuitRule
	BuildWrap bool // King and Ace are adjacent when building

	MoveSeq  SeqRule // read from the top card downward
	MoveSuit SuitRule
	MoveWrap bool

	Dropoff PackRule
	Pickup  PackRule
	Display DisplayRule
	Spread  Spread

	Capacity    int  // 0 means unlimited
	NotifyOnAdd bool // raise a stack-add event whenever cards land here
	TapDeals    bool // tapping the stack requests a deal
}

// seqOK reports whether next follows prev under rule.
func seqOK(rule SeqRule, wrap bool, prev, next *card.Card) bool {
	switch rule {
	case SeqAny:
		return true
	case SeqAsc:
		return ascends(wrap, prev, next)
	case SeqDsc:
		return ascends(wrap, next, prev)
	case SeqSeq:
		return ascends(wrap, prev, next) || ascends(wrap, next, prev)
	}
	return false
}

func ascends(wrap bool, low, high *card.Card) bool {
	if high.Value-low.Value == 1 {
		return true
	}
	return wrap && low.Value == card.King && high.Value == card.Ace
}

func suitOK(rule SuitRule, a, b *card.Card) bool {
	diff := int(a.Suit) - int(b.Suit)
	if diff < 0 {
		diff = -diff
	}
	switch rule {
	case SuitAny:
		return true
	case SuitRB:
		return diff%2 != 0
	case SuitOther:
		return diff != 0
	case SuitColor:
		return diff == 2
	case SuitSame:
		return diff == 0
	}
	return false
}

// Policies shared by several variants.

// Sink builds a single suit upward from the Ace.
func Sink() Policy {
	return Policy{
		Start:       StartAce,
		BuildSeq:    SeqAsc,
		BuildSuit:   SuitSame,
		MoveSeq:     SeqAny,
		MoveSuit:    SuitAny,
		Dropoff:     PackOne,
		Pickup:      PackOne,
		Display:     DisplayAll,
		Spread:      SpreadNone,
		NotifyOnAdd: true,
	}
}

// DrawPile is the face-down stock; tapping it deals.
func DrawPile() Policy {
	return Policy{
		Start:     StartAny,
		BuildSeq:  SeqAny,
		BuildSuit: SuitAny,
		MoveSeq:   SeqAny,
		MoveSuit:  SuitAny,
		Dropoff:   PackNone,
		Pickup:    PackNone,
		Display:   DisplayHide,
		Spread:    SpreadNone,
		TapDeals:  true,
	}
}

// Waste receives dealt cards and gives up its top card only.
func Waste(pickup PackRule) Policy {
	return Policy{
		Start:     StartAny,
		BuildSeq:  SeqAny,
		BuildSuit: SuitAny,
		MoveSeq:   SeqAny,
		MoveSuit:  SuitAny,
		Dropoff:   PackNone,
		Pickup:    pickup,
		Display:   DisplayOne,
		Spread:    SpreadRight,
	}
}

// Cell holds any one card.
func Cell() Policy {
	return Policy{
		Start:     StartAny,
		BuildSeq:  SeqAny,
		BuildSuit: SuitAny,
		MoveSeq:   SeqAny,
		MoveSuit:  SuitAny,
		Dropoff:   PackOne,
		Pickup:    PackOne,
		Display:   DisplayAll,
		Spread:    SpreadNone,
		Capacity:  1,
	}
}
