// internal/game/persist.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/sirupsen/logrus"
)

// SaveVersion tags the flattened save layout. Saves with any other version
// are discarded.
const SaveVersion = "solitaire_save_2"

// SaveState is a complete game flattened into parallel arrays. Cards are
// listed stack by stack, bottom first. History is listed most recent first.
type SaveState struct {
	Version           string  `json:"version"`
	StackCount        int     `json:"stackCount"`
	CardCount         int     `json:"cardCount"`
	Type              Variant `json:"type"`
	AnchorCardCount   []int   `json:"anchorCardCount"`
	AnchorHiddenCount []int   `json:"anchorHiddenCount"`
	Value             []int   `json:"value"`
	Suit              []int   `json:"suit"`
	RulesExtra        int     `json:"rulesExtra"`
	Score             int     `json:"score"`
	ElapsedMs         int64   `json:"elapsedMs"`
	HistoryFrom       []int   `json:"historyFrom"`
	HistoryToBegin    []int   `json:"historyToBegin"`
	HistoryToEnd      []int   `json:"historyToEnd"`
	HistoryCount      []int   `json:"historyCount"`
	HistoryFlags      []int   `json:"historyFlags"`
	Options           Options `json:"options"`
}

// Snapshot captures the session for saving. Cards held by the pointer or in
// flight are counted where they will end up.
func (s *Session) Snapshot() SaveState {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.snapAll()
	s.releaseHeld()

	st := SaveState{
		Version:    SaveVersion,
		StackCount: len(s.anchors),
		CardCount:  s.rules.cardCount(),
		Type:       s.Variant,
		Score:      s.score(),
		ElapsedMs:  s.elapsedLocked().Milliseconds(),
		Options:    s.Options,
	}
	if s.rules.extra != nil {
		st.RulesExtra = s.rules.extra(s)
	}
	for _, a := range s.anchors {
		st.AnchorCardCount = append(st.AnchorCardCount, a.Count())
		st.AnchorHiddenCount = append(st.AnchorHiddenCount, a.Hidden())
		for _, c := range a.Cards() {
			st.Value = append(st.Value, c.Value)
			st.Suit = append(st.Suit, int(c.Suit))
		}
	}
	moves := s.history.Moves()
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		st.HistoryFrom = append(st.HistoryFrom, m.From)
		st.HistoryToBegin = append(st.HistoryToBegin, m.ToBegin)
		st.HistoryToEnd = append(st.HistoryToEnd, m.ToEnd)
		st.HistoryCount = append(st.HistoryCount, m.Count)
		st.HistoryFlags = append(st.HistoryFlags, int(m.Flags))
	}
	return st
}

// Validate checks that the save describes a playable table for its variant:
// the right stacks, the right multiset of cards, and a well formed history.
func (st *SaveState) Validate() error {
	if st.Version != SaveVersion {
		return fmt.Errorf("%w: version %q", ErrInvalidSave, st.Version)
	}
	r, err := rulesFor(st.Type)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := st.Options.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if st.StackCount != r.stackCount {
		return fmt.Errorf("%w: %d stacks, want %d", ErrInvalidSave, st.StackCount, r.stackCount)
	}
	if st.CardCount != r.cardCount() {
		return fmt.Errorf("%w: %d cards, want %d", ErrInvalidSave, st.CardCount, r.cardCount())
	}
	if len(st.AnchorCardCount) != st.StackCount || len(st.AnchorHiddenCount) != st.StackCount {
		return fmt.Errorf("%w: stack arrays do not match stack count", ErrInvalidSave)
	}
	if len(st.Value) != st.CardCount || len(st.Suit) != st.CardCount {
		return fmt.Errorf("%w: card arrays do not match card count", ErrInvalidSave)
	}

	total := 0
	for i, n := range st.AnchorCardCount {
		hidden := st.AnchorHiddenCount[i]
		if n < 0 || hidden < 0 || hidden > n {
			return fmt.Errorf("%w: stack %d has %d cards, %d hidden", ErrInvalidSave, i, n, hidden)
		}
		total += n
	}
	if total != st.CardCount {
		return fmt.Errorf("%w: stacks hold %d cards, want %d", ErrInvalidSave, total, st.CardCount)
	}

	want := expectedCards(r, st.Options)
	seen := map[cardKey]int{}
	for i := range st.Value {
		c := card.New(st.Value[i], card.Suit(st.Suit[i]))
		if !c.Valid() {
			return fmt.Errorf("%w: card %d out of range", ErrInvalidSave, i)
		}
		seen[cardKey{c.Value, c.Suit}]++
	}
	for k, n := range seen {
		if want[k] != n {
			return fmt.Errorf("%w: card %v appears %d times", ErrInvalidSave, card.New(k.value, k.suit), n)
		}
	}

	nh := len(st.HistoryFrom)
	if len(st.HistoryToBegin) != nh || len(st.HistoryToEnd) != nh ||
		len(st.HistoryCount) != nh || len(st.HistoryFlags) != nh {
		return fmt.Errorf("%w: history arrays differ in length", ErrInvalidSave)
	}
	for i := 0; i < nh; i++ {
		if m := st.move(i); !m.valid(st.StackCount) {
			return fmt.Errorf("%w: history entry %d (%v) is malformed", ErrInvalidSave, i, m)
		}
	}
	return nil
}

func (st *SaveState) move(i int) Move {
	return Move{
		From:    st.HistoryFrom[i],
		ToBegin: st.HistoryToBegin[i],
		ToEnd:   st.HistoryToEnd[i],
		Count:   st.HistoryCount[i],
		Flags:   MoveFlags(st.HistoryFlags[i]),
	}
}

// RestoreSession rebuilds session id of playerID from a save. A save that
// fails validation is logged and replaced by a fresh game of the same
// variant (or Klondike when the variant is unknown); restored reports which
// happened.
func RestoreSession(id, playerID uuid.UUID, st SaveState, seed int64, logger logrus.FieldLogger) (s *Session, restored bool) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := st.Validate(); err != nil {
		logger.WithError(err).WithField("session", id).Warn("discarding saved game")
		variant, opts := st.Type, st.Options
		if _, err := rulesFor(variant); err != nil {
			variant = Klondike
		}
		if opts.Validate() != nil {
			opts = DefaultOptions()
		}
		s, _ = newSession(id, playerID, variant, opts, seed, logger)
		s.dealFresh()
		return s, false
	}

	s, _ = newSession(id, playerID, st.Type, st.Options, seed, logger)
	s.dealTable()
	s.Mu.Lock()
	defer s.Mu.Unlock()

	old := s.ignoreEvents
	s.ignoreEvents = true
	next := 0
	for i, a := range s.anchors {
		a.Clear()
		n := st.AnchorCardCount[i]
		cards := make([]*card.Card, n)
		for j := range cards {
			cards[j] = card.New(st.Value[next], card.Suit(st.Suit[next]))
			next++
		}
		a.Push(cards...)
		a.SetHidden(st.AnchorHiddenCount[i])
	}
	s.ignoreEvents = old
	s.events.clear()

	if s.rules.restoreExtra != nil {
		s.rules.restoreExtra(s, st.RulesExtra)
	}
	s.vs.carryOver = 0
	if s.hasScore() {
		s.vs.carryOver = st.Score - s.score()
	}

	s.history.Clear()
	for i := len(st.HistoryFrom) - 1; i >= 0; i-- {
		s.history.Push(st.move(i))
	}
	s.attempted = s.history.Len() > 0
	s.elapsed = time.Duration(st.ElapsedMs) * time.Millisecond
	s.started = s.now()

	if s.sinksCompleteForWin() {
		s.won = true
		s.mode = ModeWin
		s.ignoreEvents = true
	}
	s.logAction("game_restore", map[string]interface{}{"type": s.typeString(), "moves": s.history.Len()})
	return s, true
}

// sinksCompleteForWin reports whether a restored table is already won.
func (s *Session) sinksCompleteForWin() bool {
	if s.layout.Overflow >= 0 {
		return s.anchors[s.layout.Overflow].Count() == s.rules.cardCount()
	}
	return len(s.layout.Sinks) > 0 && s.sinksComplete()
}
