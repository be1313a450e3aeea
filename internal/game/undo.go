// internal/game/undo.go
package game

import (
	"slices"

	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/sirupsen/logrus"
)

// undo pops the last move and puts its cards back where they came from.
// Events stay suppressed for the duration so that restoring cards onto a
// sink does not trigger auto-moves.
func (s *Session) undo() bool {
	m, ok := s.history.Pop()
	if !ok {
		return false
	}
	if !m.valid(len(s.anchors)) {
		s.logger.WithFields(logrus.Fields{"move": m.String()}).Error("discarding malformed move from history")
		return false
	}

	old := s.ignoreEvents
	s.ignoreEvents = true
	defer func() { s.ignoreEvents = old }()

	s.releaseHeld()

	// Gather the run as it should sit on the source, deepest card first. A
	// fan-out took its cards off the source in stack order, so the last stack
	// holds the deepest of them.
	for i := m.ToBegin; i <= m.ToEnd; i++ {
		if s.anchors[i].Count() < m.Count {
			s.logger.WithFields(logrus.Fields{"move": m.String(), "stack": i}).Error("undo found too few cards")
			return false
		}
	}
	var run []*card.Card
	for i := m.ToEnd; i >= m.ToBegin; i-- {
		run = append(run, s.anchors[i].PopRun(m.Count)...)
	}
	if m.Invert() {
		slices.Reverse(run)
	}

	from := s.anchors[m.From]
	if m.Unhide() {
		from.SetHidden(from.Hidden() + 1)
	}
	from.Push(run...)

	if m.AddDealCount() && s.rules.addDealCount != nil {
		s.rules.addDealCount(s)
	}
	return true
}
