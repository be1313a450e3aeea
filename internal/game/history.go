// internal/game/history.go
package game

// History is the LIFO stack of committed moves.
type History struct {
	moves []Move
}

func (h *History) Push(m Move) {
	h.moves = append(h.moves, m)
}

func (h *History) Pop() (Move, bool) {
	n := len(h.moves)
	if n == 0 {
		return Move{}, false
	}
	m := h.moves[n-1]
	h.moves = h.moves[:n-1]
	return m, true
}

func (h *History) Peek() (Move, bool) {
	if len(h.moves) == 0 {
		return Move{}, false
	}
	return h.moves[len(h.moves)-1], true
}

func (h *History) Len() int {
	return len(h.moves)
}

func (h *History) Clear() {
	h.moves = nil
}

// Moves returns a copy of the history, oldest first.
func (h *History) Moves() []Move {
	out := make([]Move, len(h.moves))
	copy(out, h.moves)
	return out
}
