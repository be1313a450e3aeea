// internal/game/view.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
)

// CardView is a card as the renderer should draw it. Face-down cards carry
// no rank or suit.
type CardView struct {
	Value  int     `json:"value,omitempty"`
	Suit   string  `json:"suit,omitempty"`
	FaceUp bool    `json:"faceUp"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
}

// StackView is one stack with its geometry.
type StackView struct {
	ID       int         `json:"id"`
	Role     string      `json:"role"`
	X        float32     `json:"x"`
	Y        float32     `json:"y"`
	Spacing  float32     `json:"spacing"`
	Hidden   int         `json:"hidden"`
	Done     bool        `json:"done,omitempty"`
	Movable  int         `json:"movable"`
	DropBox  anchor.Rect `json:"dropBox"`
	Cards    []CardView  `json:"cards"`
	Showing  int         `json:"showing,omitempty"`
	Collapse bool        `json:"collapseHidden,omitempty"`
}

// BoardView is the full table for a renderer or client.
type BoardView struct {
	SessionID   uuid.UUID    `json:"sessionId"`
	Variant     Variant      `json:"variant"`
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Mode        Mode         `json:"mode"`
	Metrics     card.Metrics `json:"metrics"`
	Stacks      []StackView  `json:"stacks"`
	Held        []CardView   `json:"held,omitempty"`
	HeldFrom    int          `json:"heldFrom"`
	Selection   []CardView   `json:"selection,omitempty"`
	Selected    int          `json:"selected"`
	InFlight    []Transfer   `json:"inFlight,omitempty"`
	Score       int          `json:"score"`
	ScoreString string       `json:"scoreString,omitempty"`
	Status      string       `json:"status,omitempty"`
	Won         bool         `json:"won"`
	ElapsedMs   int64        `json:"elapsedMs"`
	Moves       int          `json:"moves"`
	Replaying   bool         `json:"replaying"`
	Options     Options      `json:"options"`
}

func faceUpView(c *card.Card) CardView {
	return CardView{Value: c.Value, Suit: c.Suit.String(), FaceUp: true, X: c.X, Y: c.Y}
}

// View renders the session for a client.
func (s *Session) View() BoardView {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	v := BoardView{
		SessionID: s.ID,
		Variant:   s.Variant,
		Type:      s.typeString(),
		Title:     s.prettyName(),
		Mode:      s.mode,
		Metrics:   s.metrics,
		HeldFrom:  -1,
		Selected:  -1,
		Score:     s.score(),
		Status:    s.status(),
		Won:       s.won,
		ElapsedMs: s.elapsedLocked().Milliseconds(),
		Moves:     s.history.Len(),
		Replaying: s.replay.active,
		Options:   s.Options,
	}
	if s.hasScore() {
		v.ScoreString = ScoreString(v.Score)
	}

	for _, a := range s.anchors {
		x, y := a.Position()
		sv := StackView{
			ID:       a.ID,
			Role:     s.layout.Role(a.ID),
			X:        x,
			Y:        y,
			Spacing:  a.Spacing(),
			Hidden:   a.Hidden(),
			Done:     a.Done(),
			Movable:  a.MovableRunLength(),
			DropBox:  a.DropBox(0, false),
			Collapse: a.HidesHidden(),
		}
		if a.Policy.Spread == anchor.SpreadRight {
			sv.Showing = a.Showing()
		}
		for i, c := range a.Cards() {
			if a.FaceUp(i) {
				sv.Cards = append(sv.Cards, faceUpView(c))
				continue
			}
			sv.Cards = append(sv.Cards, CardView{X: c.X, Y: c.Y})
		}
		v.Stacks = append(v.Stacks, sv)
	}

	if s.moveCard != nil {
		v.HeldFrom = s.moveCard.Origin().ID
		for _, c := range s.moveCard.Cards() {
			v.Held = append(v.Held, faceUpView(c))
		}
	}
	if s.selectCard != nil {
		v.Selected = s.selectCard.Selected()
		for _, c := range s.selectCard.Cards() {
			v.Selection = append(v.Selection, faceUpView(c))
		}
	}
	for _, t := range s.inFlight {
		v.InFlight = append(v.InFlight, Transfer{Cards: t.cards, To: t.to})
	}
	return v
}
