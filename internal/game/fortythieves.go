// internal/game/fortythieves.go
package game

import (
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

const (
	fortyThievesColumns = 10
	fortyThievesDepth   = 4
)

var fortyThievesRules = rules{
	name:       "Forty Thieves",
	stackCount: 20,
	decks:      2,
	columns:    fortyThievesColumns,
	setup:      fortyThievesSetup,
	deal:       fortyThievesDeal,
	onDeal:     fortyThievesOnDeal,
	onStackAdd: sinkStackAdd,
	freeSpaces: func(s *Session) int { return s.countEmpty(s.layout.Tableau) },
	resize:     fortyThievesResize,
	typeString: func(*Session) string { return "Forty Thieves" },
	prettyName: func(*Session) string { return "Forty Thieves" },
	status: func(s *Session) string {
		return plural(s.anchors[s.layout.DrawPile].Count(), "card left", "cards left")
	},
}

func fortyThievesTableau() anchor.Policy {
	return anchor.Policy{
		Start:     anchor.StartAny,
		BuildSeq:  anchor.SeqDsc,
		BuildSuit: anchor.SuitSame,
		MoveSeq:   anchor.SeqAsc,
		MoveSuit:  anchor.SuitSame,
		Dropoff:   anchor.PackMulti,
		Pickup:    anchor.PackLimitByFree,
		Display:   anchor.DisplayAll,
		Spread:    anchor.SpreadDown,
	}
}

// fortyThievesSetup: ten tableau columns, eight sinks, draw pile and waste.
func fortyThievesSetup(s *Session) {
	s.layout.Tableau = s.addAnchors(fortyThievesColumns, fortyThievesTableau())
	s.layout.Sinks = s.addAnchors(8, anchor.Sink())
	s.layout.DrawPile = s.addAnchor(anchor.DrawPile())
	s.layout.Waste = s.addAnchor(anchor.Waste(anchor.PackOne))
	s.layout.SmartSources = s.layout.Tableau
}

func fortyThievesDeal(s *Session, d *card.Deck) {
	for i := 0; i < fortyThievesColumns*fortyThievesDepth; i++ {
		s.anchors[s.layout.Tableau[i%fortyThievesColumns]].Push(d.Pop())
	}
	pile := s.anchors[s.layout.DrawPile]
	for !d.Empty() {
		pile.Push(d.Pop())
	}
}

// fortyThievesOnDeal turns one card onto the waste. There are no redeals.
func fortyThievesOnDeal(s *Session) {
	pile := s.anchors[s.layout.DrawPile]
	waste := s.anchors[s.layout.Waste]
	if pile.Count() == 0 {
		return
	}
	s.commit(NewMove(pile.ID, waste.ID, 1, true, false))
	waste.Push(pile.Pop())
	if pile.Count() == 0 {
		pile.SetDone(true)
	}
}

func fortyThievesResize(s *Session, w, h int) {
	m := s.metrics
	top := float32(5)
	for i, id := range s.layout.Sinks {
		s.anchors[id].SetPosition(columnX(i, fortyThievesColumns, w, m), top)
	}
	s.anchors[s.layout.Sinks[0]].SetLeftEdge(0)
	s.anchors[s.layout.Waste].SetPosition(columnX(8, fortyThievesColumns, w, m), top)
	pile := s.anchors[s.layout.DrawPile]
	pile.SetPosition(columnX(9, fortyThievesColumns, w, m), top)
	pile.SetRightEdge(float32(w))

	s.layoutTableau(s.layout.Tableau, top+float32(m.Height)+10, w, h)
}
