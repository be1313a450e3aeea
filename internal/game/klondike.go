// internal/game/klondike.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

const (
	klondikeColumns   = 7
	vegasBuyIn        = 52
	vegasCardValue    = 5
	vegasDealThreeMax = 2
)

var klondikeRules = rules{
	name:         "Klondike",
	stackCount:   13,
	decks:        1,
	columns:      klondikeColumns,
	setup:        klondikeSetup,
	deal:         klondikeDeal,
	onDeal:       klondikeOnDeal,
	onStackAdd:   sinkStackAdd,
	resize:       klondikeResize,
	typeString:   klondikeType,
	prettyName:   klondikePrettyName,
	status:       klondikeStatus,
	score:        klondikeScore,
	extra:        func(s *Session) int { return s.vs.dealsLeft },
	restoreExtra: func(s *Session, extra int) { s.vs.dealsLeft = extra },
	addDealCount: klondikeAddDealCount,
}

func klondikeTableau() anchor.Policy {
	return anchor.Policy{
		Start:     anchor.StartKing,
		BuildSeq:  anchor.SeqDsc,
		BuildSuit: anchor.SuitRB,
		MoveSeq:   anchor.SeqAsc,
		MoveSuit:  anchor.SuitRB,
		Dropoff:   anchor.PackMulti,
		Pickup:    anchor.PackMulti,
		Display:   anchor.DisplayMix,
		Spread:    anchor.SpreadDown,
	}
}

// klondikeSetup: draw pile, waste, four sinks, seven tableau columns.
func klondikeSetup(s *Session) {
	s.layout.DrawPile = s.addAnchor(anchor.DrawPile())
	s.layout.Waste = s.addAnchor(anchor.Waste(anchor.PackOne))
	s.layout.Sinks = s.addAnchors(4, anchor.Sink())
	s.layout.Tableau = s.addAnchors(klondikeColumns, klondikeTableau())
	s.layout.SmartSources = s.layout.Tableau

	showing := 1
	if s.Options.DealThree {
		showing = 3
	}
	s.anchors[s.layout.Waste].SetShowing(showing)

	s.vs.dealsLeft = -1
	if s.Options.Vegas {
		s.vs.dealsLeft = 0
		if s.Options.DealThree {
			s.vs.dealsLeft = vegasDealThreeMax
		}
	}
}

// klondikeDeal gives column i i+1 cards with all but the top face down.
func klondikeDeal(s *Session, d *card.Deck) {
	for i, id := range s.layout.Tableau {
		a := s.anchors[id]
		for j := 0; j <= i; j++ {
			a.Push(d.Pop())
		}
		a.SetHidden(i)
	}
	pile := s.anchors[s.layout.DrawPile]
	for !d.Empty() {
		pile.Push(d.Pop())
	}
}

// klondikeOnDeal deals to the waste, or turns the waste back over when the
// draw pile is empty and a redeal is left.
func klondikeOnDeal(s *Session) {
	pile := s.anchors[s.layout.DrawPile]
	waste := s.anchors[s.layout.Waste]

	if pile.Count() == 0 {
		if waste.Count() == 0 {
			return
		}
		if s.vs.dealsLeft == 0 {
			pile.SetDone(true)
			return
		}
		addDeal := false
		if s.vs.dealsLeft > 0 {
			s.vs.dealsLeft--
			addDeal = true
		}
		n := waste.Count()
		m := NewMove(waste.ID, pile.ID, n, true, false)
		if addDeal {
			m.Flags |= FlagAddDealCount
		}
		s.commit(m)
		pile.Push(reversed(waste.PopRun(n))...)
		return
	}

	n := min(waste.Showing(), pile.Count())
	s.commit(NewMove(pile.ID, waste.ID, n, true, false))
	waste.Push(reversed(pile.PopRun(n))...)
	if s.vs.dealsLeft == 0 && pile.Count() == 0 {
		pile.SetDone(true)
	}
}

func klondikeAddDealCount(s *Session) {
	if s.vs.dealsLeft < 0 {
		return
	}
	s.vs.dealsLeft++
	s.anchors[s.layout.DrawPile].SetDone(false)
}

func klondikeScore(s *Session) (int, bool) {
	if !s.Options.Vegas {
		return 0, false
	}
	score := s.vs.carryOver - vegasBuyIn
	for _, id := range s.layout.Sinks {
		score += vegasCardValue * s.anchors[id].Count()
	}
	return score, true
}

// ScoreString renders a Vegas score as dollars, e.g. -$52.
func ScoreString(score int) string {
	if score < 0 {
		return fmt.Sprintf("-$%d", -score)
	}
	return fmt.Sprintf("$%d", score)
}

func klondikeStatus(s *Session) string {
	if score, ok := klondikeScore(s); ok {
		return ScoreString(score)
	}
	return ""
}

func klondikeType(s *Session) string {
	style := "Normal"
	if s.Options.Vegas {
		style = "Vegas"
	}
	deal := 1
	if s.Options.DealThree {
		deal = 3
	}
	return fmt.Sprintf("Solitaire%sDeal%d", style, deal)
}

func klondikePrettyName(s *Session) string {
	name := "Solitaire"
	if s.Options.Vegas {
		name = "Vegas Solitaire"
	}
	if s.Options.DealThree {
		return name + " Dealing Three Cards"
	}
	return name + " Dealing One Card"
}

func klondikeResize(s *Session, w, h int) {
	m := s.metrics
	top := float32(5)
	pile := s.anchors[s.layout.DrawPile]
	pile.SetPosition(columnX(0, klondikeColumns, w, m), top)
	pile.SetLeftEdge(0)
	s.anchors[s.layout.Waste].SetPosition(columnX(1, klondikeColumns, w, m), top)
	for i, id := range s.layout.Sinks {
		s.anchors[id].SetPosition(columnX(i+3, klondikeColumns, w, m), top)
	}
	s.anchors[s.layout.Sinks[len(s.layout.Sinks)-1]].SetRightEdge(float32(w))

	s.layoutTableau(s.layout.Tableau, top+float32(m.Height)+10, w, h)
}

func reversed(cards []*card.Card) []*card.Card {
	out := make([]*card.Card, len(cards))
	for i, c := range cards {
		out[len(cards)-1-i] = c
	}
	return out
}
