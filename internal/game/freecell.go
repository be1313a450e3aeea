// internal/game/freecell.go
package game

import (
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

const freecellColumns = 8

var freecellRules = rules{
	name:       "Freecell",
	stackCount: 16,
	decks:      1,
	columns:    freecellColumns,
	setup:      freecellSetup,
	deal:       freecellDeal,
	onStackAdd: sinkStackAdd,
	freeSpaces: func(s *Session) int {
		return s.countEmpty(s.layout.Cells) + s.countEmpty(s.layout.Tableau)
	},
	resize:     freecellResize,
	typeString: func(*Session) string { return "Freecell" },
	prettyName: func(*Session) string { return "Freecell" },
}

// freecellTableau moves runs as long as there are enough free cells and
// columns to shuffle them through.
func freecellTableau() anchor.Policy {
	return anchor.Policy{
		Start:     anchor.StartAny,
		BuildSeq:  anchor.SeqDsc,
		BuildSuit: anchor.SuitRB,
		MoveSeq:   anchor.SeqAsc,
		MoveSuit:  anchor.SuitRB,
		Dropoff:   anchor.PackLimitByFree,
		Pickup:    anchor.PackLimitByFree,
		Display:   anchor.DisplayAll,
		Spread:    anchor.SpreadDown,
	}
}

// freecellSetup: four cells, four sinks, eight tableau columns.
func freecellSetup(s *Session) {
	s.layout.Cells = s.addAnchors(4, anchor.Cell())
	s.layout.Sinks = s.addAnchors(4, anchor.Sink())
	s.layout.Tableau = s.addAnchors(freecellColumns, freecellTableau())
	s.layout.SmartSources = append(append([]int{}, s.layout.Cells...), s.layout.Tableau...)
}

func freecellDeal(s *Session, d *card.Deck) {
	for i := 0; !d.Empty(); i++ {
		s.anchors[s.layout.Tableau[i%freecellColumns]].Push(d.Pop())
	}
}

func freecellResize(s *Session, w, h int) {
	m := s.metrics
	top := float32(5)
	for i, id := range s.layout.Cells {
		s.anchors[id].SetPosition(columnX(i, freecellColumns, w, m), top)
	}
	for i, id := range s.layout.Sinks {
		s.anchors[id].SetPosition(columnX(i+len(s.layout.Cells), freecellColumns, w, m), top)
	}
	s.anchors[s.layout.Cells[0]].SetLeftEdge(0)
	s.anchors[s.layout.Sinks[len(s.layout.Sinks)-1]].SetRightEdge(float32(w))

	s.layoutTableau(s.layout.Tableau, top+float32(m.Height)+10, w, h)
}
