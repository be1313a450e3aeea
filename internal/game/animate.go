// internal/game/animate.go
package game

import "github.com/jason-s-yu/solitaire/internal/card"

// Transfer describes cards travelling to a stack, lead card first.
type Transfer struct {
	Cards []*card.Card `json:"cards"`
	To    int          `json:"to"`
}

// Animator shows transfers to the player. The session keeps ownership of the
// cards: the host calls FinishAnimation when a transfer has arrived, in the
// order the transfers were started, or CancelAnimation to land all of them.
type Animator interface {
	Start(t Transfer)
}

type transfer struct {
	cards []*card.Card
	to    int
	done  func()
}

// animate moves cards to stack `to`, running done once they land. Without an
// animator, or while snapping, they land on the next drain step.
func (s *Session) animate(cards []*card.Card, to int, done func()) {
	t := &transfer{cards: cards, to: to, done: done}
	if s.mode != ModeWin {
		s.mode = ModeAnimate
	}
	if s.animator == nil || s.snapping {
		s.landing = append(s.landing, t)
		return
	}
	s.inFlight = append(s.inFlight, t)
	s.animator.Start(Transfer{Cards: cards, To: to})
}

func (s *Session) land(t *transfer) {
	s.anchors[t.to].Push(t.cards...)
	if t.done != nil {
		t.done()
	}
}

// snapAll lands every transfer in flight at once, along with whatever work
// landing them triggers.
func (s *Session) snapAll() {
	if len(s.inFlight) == 0 && len(s.landing) == 0 {
		return
	}
	s.snapping = true
	s.landing = append(s.landing, s.inFlight...)
	s.inFlight = nil
	s.drain()
	s.snapping = false
}

// FinishAnimation lands the oldest transfer in flight.
func (s *Session) FinishAnimation() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if len(s.inFlight) == 0 {
		return false
	}
	t := s.inFlight[0]
	s.inFlight = s.inFlight[1:]
	s.landing = append(s.landing, t)
	s.drain()
	return true
}

// CancelAnimation skips the remaining animation: every transfer lands now and
// any follow-up moves complete without being animated.
func (s *Session) CancelAnimation() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.snapAll()
}

// InFlight returns the transfers awaiting FinishAnimation.
func (s *Session) InFlight() []Transfer {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := make([]Transfer, len(s.inFlight))
	for i, t := range s.inFlight {
		out[i] = Transfer{Cards: t.cards, To: t.to}
	}
	return out
}
