// internal/game/spider.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

const (
	spiderColumns   = 10
	spiderDealCount = 54
	spiderRunLength = 13
)

var spiderRules = rules{
	name:       "Spider",
	stackCount: 12,
	decks:      2,
	columns:    spiderColumns,
	suits:      func(o Options) int { return o.SpiderSuits },
	setup:      spiderSetup,
	deal:       spiderDeal,
	onDeal:     spiderOnDeal,
	onStackAdd: spiderOnStackAdd,
	onDealNext: spiderOnDealNext,
	resize:     spiderResize,
	typeString: func(s *Session) string { return fmt.Sprintf("Spider%dSuit", s.Options.SpiderSuits) },
	prettyName: spiderPrettyName,
	status:     spiderStatus,
}

func spiderTableau() anchor.Policy {
	return anchor.Policy{
		Start:       anchor.StartAny,
		BuildSeq:    anchor.SeqDsc,
		BuildSuit:   anchor.SuitAny,
		MoveSeq:     anchor.SeqAsc,
		MoveSuit:    anchor.SuitSame,
		Dropoff:     anchor.PackMulti,
		Pickup:      anchor.PackMulti,
		Display:     anchor.DisplayMix,
		Spread:      anchor.SpreadDown,
		NotifyOnAdd: true,
	}
}

// spiderOverflow collects completed runs off screen.
func spiderOverflow() anchor.Policy {
	return anchor.Policy{
		Start:     anchor.StartAny,
		BuildSeq:  anchor.SeqAny,
		BuildSuit: anchor.SuitAny,
		MoveSeq:   anchor.SeqAny,
		MoveSuit:  anchor.SuitAny,
		Dropoff:   anchor.PackNone,
		Pickup:    anchor.PackNone,
		Display:   anchor.DisplayAll,
		Spread:    anchor.SpreadNone,
	}
}

// spiderSetup: ten tableau columns, the draw pile, and the overflow.
func spiderSetup(s *Session) {
	s.layout.Tableau = s.addAnchors(spiderColumns, spiderTableau())
	s.layout.DrawPile = s.addAnchor(anchor.DrawPile())
	s.layout.Overflow = s.addAnchor(spiderOverflow())
}

func spiderDeal(s *Session, d *card.Deck) {
	for i := 0; i < spiderDealCount; i++ {
		s.anchors[s.layout.Tableau[i%spiderColumns]].Push(d.Pop())
	}
	for _, id := range s.layout.Tableau {
		a := s.anchors[id]
		a.SetHidden(a.Count() - 1)
	}
	pile := s.anchors[s.layout.DrawPile]
	for !d.Empty() {
		pile.Push(d.Pop())
	}
}

// spiderOnDeal deals one card to each column, one at a time. The whole deal
// is recorded up front as a single fan-out move.
func spiderOnDeal(s *Session) {
	pile := s.anchors[s.layout.DrawPile]
	if pile.Count() == 0 {
		return
	}
	n := min(spiderColumns, pile.Count())
	first := s.layout.Tableau[0]
	s.commit(NewFanOut(pile.ID, first, s.layout.Tableau[n-1], 1))
	s.vs.stillDealing = true
	s.animate([]*card.Card{pile.Pop()}, first, nil)
}

func spiderOnDealNext(s *Session, next int) {
	pile := s.anchors[s.layout.DrawPile]
	if pile.Count() > 0 && next < s.layout.Tableau[0]+spiderColumns {
		s.animate([]*card.Card{pile.Pop()}, next, nil)
		return
	}
	s.vs.stillDealing = false
}

// spiderOnStackAdd clears a completed King-to-Ace run of one suit to the
// overflow, then keeps a deal in progress going.
func spiderOnStackAdd(s *Session, a *anchor.Anchor) {
	if !contains(s.layout.Tableau, a.ID) {
		return
	}
	if completedRun(a) {
		overflow := s.anchors[s.layout.Overflow]
		run := a.PopRun(spiderRunLength)
		s.commit(NewMove(a.ID, overflow.ID, spiderRunLength, true, a.UnhideTop()))
		overflow.Push(reversed(run)...)
		if overflow.Count() == s.rules.cardCount() {
			s.signalWin()
			return
		}
	}
	if s.vs.stillDealing {
		s.post(Event{Type: EventDealNext, Anchor: a.ID + 1})
	}
}

// completedRun reports whether the top 13 face-up cards run Ace (top) to
// King in one suit.
func completedRun(a *anchor.Anchor) bool {
	n := a.Count()
	if a.Visible() < spiderRunLength || a.Top().Value != card.Ace {
		return false
	}
	top := a.Top()
	for i := 1; i < spiderRunLength; i++ {
		c := a.CardAt(n - 1 - i)
		if c.Suit != top.Suit || c.Value != card.Ace+i {
			return false
		}
	}
	return true
}

func spiderStatus(s *Session) string {
	deals := s.anchors[s.layout.DrawPile].Count() / spiderColumns
	return plural(deals, "deal left", "deals left")
}

func spiderResize(s *Session, w, h int) {
	m := s.metrics
	top := float32(5)
	s.layoutTableau(s.layout.Tableau, top, w, h-m.Height-10)

	pile := s.anchors[s.layout.DrawPile]
	pile.SetPosition(columnX(spiderColumns-1, spiderColumns, w, m), float32(h-m.Height-5))
	pile.SetRightEdge(float32(w))

	// completed runs are kept off screen
	s.anchors[s.layout.Overflow].SetPosition(float32(w+m.Width), top)
}

func spiderPrettyName(s *Session) string {
	switch s.Options.SpiderSuits {
	case 1:
		return "Spider One Suit"
	case 2:
		return "Spider Two Suit"
	default:
		return "Spider Four Suit"
	}
}
