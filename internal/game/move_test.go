// internal/game/move_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/anchor"
	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveFlags(t *testing.T) {
	m := NewMove(1, 2, 3, true, true)
	assert.True(t, m.Invert())
	assert.True(t, m.Unhide())
	assert.False(t, m.AddDealCount())
	assert.False(t, m.IsFanOut())
	assert.Equal(t, "1->2 x3 flags=3", m.String())

	f := NewFanOut(10, 0, 9, 1)
	assert.True(t, f.IsFanOut())
	assert.Equal(t, MoveFlags(0), f.Flags)
	assert.Equal(t, "10->[0..9] x1 flags=0", f.String())
}

func TestMoveValid(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want bool
	}{
		{"plain", NewMove(0, 1, 1, false, false), true},
		{"fan out", NewFanOut(10, 0, 9, 1), true},
		{"zero count", NewMove(0, 1, 0, false, false), false},
		{"source out of range", NewMove(12, 1, 1, false, false), false},
		{"reversed range", Move{From: 10, ToBegin: 9, ToEnd: 0, Count: 1}, false},
		{"unknown flag", Move{From: 0, ToBegin: 1, ToEnd: 1, Count: 1, Flags: 0x10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.move.valid(12))
		})
	}
}

func TestHistory(t *testing.T) {
	var h History
	_, ok := h.Pop()
	assert.False(t, ok)

	h.Push(NewMove(0, 1, 1, false, false))
	h.Push(NewMove(1, 2, 1, false, false))
	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, top.From)

	moves := h.Moves()
	moves[0].From = 99
	assert.Equal(t, 0, h.Moves()[0].From, "Moves returns a copy")

	m, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, m.From)
	assert.Equal(t, 1, h.Len())
	h.Clear()
	assert.Equal(t, 0, h.Len())
}

func TestEventQueueCoalescesRepeats(t *testing.T) {
	var q eventQueue
	q.post(Event{Type: EventStackAdd, Anchor: 3})
	q.post(Event{Type: EventStackAdd, Anchor: 3})
	q.post(Event{Type: EventSmartMove, Anchor: -1})
	q.post(Event{Type: EventStackAdd, Anchor: 3})
	assert.Equal(t, 3, q.len())

	ev, ok := q.next()
	require.True(t, ok)
	assert.Equal(t, EventStackAdd, ev.Type)
	ev, _ = q.next()
	assert.Equal(t, EventSmartMove, ev.Type)

	q.clear()
	_, ok = q.next()
	assert.False(t, ok)
}

func TestMoveCardDrag(t *testing.T) {
	m := card.DefaultMetrics
	origin := anchor.New(0, anchor.Cell(), &m)
	cd := card.New(5, card.Hearts)
	cd.SetPosition(10, 10)

	mc := newMoveCard(origin, []*card.Card{cd}, 15, 15)
	assert.False(t, mc.HasMoved())
	mc.DragTo(16, 16)
	assert.False(t, mc.HasMoved(), "within slop")
	mc.DragTo(40, 15)
	assert.True(t, mc.HasMoved())
	assert.Equal(t, float32(35), cd.X)

	mc.PlaceAt(100, 200)
	assert.Equal(t, float32(100), cd.X)
	assert.Equal(t, float32(200), cd.Y)

	mc.Release()
	assert.Equal(t, 1, origin.Count())
	assert.Equal(t, 0, mc.Count())
}

func TestSelectCard(t *testing.T) {
	m := card.Metrics{Width: 30, Height: 60}
	origin := anchor.New(0, anchor.Cell(), &m)
	cards := []*card.Card{card.New(9, card.Clubs), card.New(8, card.Hearts), card.New(7, card.Clubs)}
	for i, cd := range cards {
		cd.SetPosition(0, float32(i*20))
	}

	sc := newSelectCard(origin, cards, m)
	assert.Equal(t, -1, sc.Selected())
	assert.Equal(t, 3, sc.Count())

	require.True(t, sc.Tap(5, 25))
	assert.Equal(t, 1, sc.Selected(), "the topmost card under the point wins")
	assert.Equal(t, 2, sc.Count())
	assert.False(t, sc.Select(3))

	run := sc.Dump()
	require.Len(t, run, 2)
	assert.Equal(t, 8, run[0].Value)
	assert.Equal(t, 1, origin.Count())
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	player := uuid.New()

	a := newTestSession(t, Klondike, nil)
	a.PlayerID = player
	b := newTestSession(t, Spider, nil)
	store.AddSession(a)
	store.AddSession(b)

	got, ok := store.GetSession(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Len(t, store.SessionsForPlayer(player), 1)

	store.DeleteSession(a.ID)
	_, ok = store.GetSession(a.ID)
	assert.False(t, ok)
	assert.Empty(t, store.SessionsForPlayer(player))
}

func TestSessionStoreSweep(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	idle := newTestSession(t, Klondike, nil)
	idle.SetClock(func() time.Time { return now })
	idle.Pause()
	busy := newTestSession(t, Freecell, nil)
	store.AddSession(idle)
	store.AddSession(busy)

	assert.Empty(t, store.Sweep(time.Minute, now.Add(30*time.Second)))

	swept := store.Sweep(time.Minute, now.Add(2*time.Minute))
	require.Len(t, swept, 1)
	assert.Same(t, idle, swept[0])
	_, ok := store.GetSession(idle.ID)
	assert.False(t, ok)
	_, ok = store.GetSession(busy.ID)
	assert.True(t, ok, "running sessions stay live")

	idle.Resume()
	_, paused := idle.IdleSince()
	assert.False(t, paused)
}
