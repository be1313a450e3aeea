// internal/game/variant_test.go
package game

import (
	"testing"

	"github.com/jason-s-yu/solitaire/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Spider ")
	require.NoError(t, err)
	assert.Equal(t, Spider, v)

	_, err = ParseVariant("pyramid")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	var got Variant
	require.NoError(t, got.UnmarshalText([]byte("fortythieves")))
	assert.Equal(t, FortyThieves, got)
	text, err := Freecell.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "freecell", string(text))
}

func TestLayoutRoles(t *testing.T) {
	s := newTestSession(t, Freecell, nil)
	l := s.Layout()
	assert.Equal(t, "cell", l.Role(0))
	assert.Equal(t, "sink", l.Role(4))
	assert.Equal(t, "tableau", l.Role(8))
	assert.Equal(t, "", l.Role(99))
	assert.Equal(t, []int{0, 1, 2, 3, 8, 9, 10, 11, 12, 13, 14, 15}, l.SmartSources)
}

func TestKlondikeDealThreeAndUndo(t *testing.T) {
	s := newTestSession(t, Klondike, nil)
	l := s.Layout()
	before := s.Anchor(l.DrawPile).Cards()

	require.True(t, s.Deal())
	assert.Equal(t, 21, s.Anchor(l.DrawPile).Count())
	waste := s.Anchor(l.Waste).Cards()
	require.Len(t, waste, 3)
	// the pile's top card ends up deepest in the waste
	assert.Same(t, before[23], waste[0])
	assert.Same(t, before[21], waste[2])

	hist := s.History()
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Invert())

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Anchor(l.Waste).Count())
	assert.Equal(t, before, s.Anchor(l.DrawPile).Cards())
}

func TestKlondikeRedealRestoresPileOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoMove = AutoMoveNever
	opts.DealThree = false
	s := newTestSession(t, Klondike, &opts)
	l := s.Layout()
	before := s.Anchor(l.DrawPile).Cards()

	for i := 0; i < 24; i++ {
		require.True(t, s.Deal())
	}
	assert.Equal(t, 0, s.Anchor(l.DrawPile).Count())
	assert.False(t, s.Anchor(l.DrawPile).Done(), "unlimited redeals")

	require.True(t, s.Deal())
	assert.Equal(t, 0, s.Anchor(l.Waste).Count())
	assert.Equal(t, before, s.Anchor(l.DrawPile).Cards())
	assert.Len(t, s.History(), 25)
	assert.False(t, s.History()[24].AddDealCount())
}

func TestKlondikeVegasRedealLimit(t *testing.T) {
	t.Run("deal one has no redeal", func(t *testing.T) {
		opts := Options{DealThree: false, Vegas: true, SpiderSuits: 1, AutoMove: AutoMoveNever}
		s := newTestSession(t, Klondike, &opts)
		l := s.Layout()
		for i := 0; i < 24; i++ {
			require.True(t, s.Deal())
		}
		assert.True(t, s.Anchor(l.DrawPile).Done())

		s.Deal()
		assert.Len(t, s.History(), 24, "a spent pile deals nothing")
		assert.Equal(t, 24, s.Anchor(l.Waste).Count())
	})

	t.Run("deal three redeals twice", func(t *testing.T) {
		opts := Options{DealThree: true, Vegas: true, SpiderSuits: 1, AutoMove: AutoMoveNever}
		s := newTestSession(t, Klondike, &opts)
		assert.Equal(t, "SolitaireVegasDeal3", s.TypeString())
		for i := 0; i < 8; i++ {
			require.True(t, s.Deal())
		}
		assert.Equal(t, 2, s.vs.dealsLeft)

		require.True(t, s.Deal())
		assert.Equal(t, 1, s.vs.dealsLeft)
		hist := s.History()
		assert.True(t, hist[len(hist)-1].AddDealCount())

		require.True(t, s.Undo())
		assert.Equal(t, 2, s.vs.dealsLeft)
		assert.Equal(t, 24, s.Anchor(s.Layout().Waste).Count())
	})
}

func TestKlondikeDealWithEmptyPileAndWaste(t *testing.T) {
	s := newTestSession(t, Klondike, nil)
	setTable(s, nil, nil)
	require.True(t, s.Deal())
	assert.Empty(t, s.History())
}

func TestVegasScoreCountsSinkCards(t *testing.T) {
	opts := Options{DealThree: true, Vegas: true, SpiderSuits: 1, AutoMove: AutoMoveNever}
	s := newTestSession(t, Klondike, &opts)
	l := s.Layout()
	setTable(s, map[int][]*card.Card{
		l.Sinks[0]:   up(3, card.Clubs),
		l.Tableau[0]: {c(card.Ace, card.Hearts)},
	}, nil)
	assert.Equal(t, -52+15, s.Score())

	require.True(t, s.PickUpRun(l.Tableau[0], 1))
	require.True(t, s.Fling())
	assert.Equal(t, -52+20, s.Score())
	assert.Equal(t, "-$32", s.Status())
	assert.Equal(t, "$5", ScoreString(5))
}

func TestSpiderDealFanOut(t *testing.T) {
	s := newTestSession(t, Spider, nil)
	l := s.Layout()
	pileBefore := s.Anchor(l.DrawPile).Cards()
	counts := make([]int, len(l.Tableau))
	for i, id := range l.Tableau {
		counts[i] = s.Anchor(id).Count()
	}
	assert.Equal(t, "5 deals left", s.Status())
	assert.Equal(t, "Spider1Suit", s.TypeString())

	require.True(t, s.Deal())
	hist := s.History()
	require.Len(t, hist, 1)
	assert.Equal(t, NewFanOut(l.DrawPile, l.Tableau[0], l.Tableau[9], 1), hist[0])
	assert.True(t, hist[0].IsFanOut())
	for i, id := range l.Tableau {
		assert.Equal(t, counts[i]+1, s.Anchor(id).Count())
		assert.Same(t, pileBefore[len(pileBefore)-1-i], s.Anchor(id).Top())
	}
	assert.Equal(t, "4 deals left", s.Status())

	require.True(t, s.Undo())
	assert.Equal(t, pileBefore, s.Anchor(l.DrawPile).Cards())
	for i, id := range l.Tableau {
		assert.Equal(t, counts[i], s.Anchor(id).Count())
	}
	require.NoError(t, s.SanityCheck())
}

func TestSpiderCompletedRunMovesToOverflow(t *testing.T) {
	s := newTestSession(t, Spider, nil)
	l := s.Layout()
	setTable(s, map[int][]*card.Card{
		l.Tableau[0]: append([]*card.Card{c(5, card.Clubs)}, run(card.King, 2, card.Spades)...),
		l.Tableau[1]: {c(card.Ace, card.Spades)},
	}, map[int]int{l.Tableau[0]: 1})

	require.True(t, s.PickUpRun(l.Tableau[1], 1))
	require.True(t, s.DropAttempt(l.Tableau[0], 0))

	assert.Equal(t, 13, s.Anchor(l.Overflow).Count())
	t0 := s.Anchor(l.Tableau[0])
	assert.Equal(t, 1, t0.Count())
	assert.Equal(t, 0, t0.Hidden())

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, NewMove(l.Tableau[0], l.Overflow, 13, true, true), hist[1])
	assert.False(t, s.Won())

	require.True(t, s.Undo())
	assert.Equal(t, 14, t0.Count())
	assert.Equal(t, 1, t0.Hidden())
	assert.Equal(t, card.Ace, t0.Top().Value)
	assert.Equal(t, 0, s.Anchor(l.Overflow).Count())
}

func TestSpiderWinsWhenOverflowIsFull(t *testing.T) {
	s := newTestSession(t, Spider, nil)
	l := s.Layout()
	var done []*card.Card
	for i := 0; i < 7; i++ {
		done = append(done, run(card.King, card.Ace, card.Spades)...)
	}
	setTable(s, map[int][]*card.Card{
		l.Overflow:   done,
		l.Tableau[0]: run(card.King, 2, card.Spades),
		l.Tableau[1]: {c(card.Ace, card.Spades)},
	}, nil)

	won := false
	s.OnWin = func(Result) { won = true }
	require.True(t, s.PickUpRun(l.Tableau[1], 1))
	require.True(t, s.DropAttempt(l.Tableau[0], 0))
	assert.True(t, won)
	assert.True(t, s.Won())
	assert.Equal(t, 104, s.Anchor(l.Overflow).Count())
}

func TestSpiderMoveRequiresSameSuitRun(t *testing.T) {
	s := newTestSession(t, Spider, nil)
	l := s.Layout()
	setTable(s, map[int][]*card.Card{
		l.Tableau[0]: {c(9, card.Hearts), c(8, card.Spades), c(7, card.Spades)},
	}, nil)
	assert.Equal(t, 2, s.Anchor(l.Tableau[0]).MovableRunLength())
}

func TestFreecellRunLimitedByFreeSpaces(t *testing.T) {
	s := newTestSession(t, Freecell, nil)
	l := s.Layout()
	stacks := map[int][]*card.Card{
		l.Tableau[0]: {c(card.King, card.Clubs), c(6, card.Hearts), c(5, card.Spades), c(4, card.Hearts), c(3, card.Spades)},
	}
	for i, id := range l.Tableau[1:] {
		stacks[id] = []*card.Card{c(card.King, card.Suit(i%4))}
	}
	setTable(s, stacks, nil)

	t0 := s.Anchor(l.Tableau[0])
	assert.Equal(t, 4, t0.MovableRunLength(), "four empty cells allow a run of five, capped by the run")

	setTable(s, map[int][]*card.Card{
		l.Tableau[0]: stacks[l.Tableau[0]],
		l.Cells[0]:   {c(card.Queen, card.Clubs)},
		l.Cells[1]:   {c(card.Queen, card.Hearts)},
		l.Cells[2]:   {c(card.Queen, card.Spades)},
	}, nil)
	// one free cell and seven empty columns
	assert.Equal(t, 4, t0.MovableRunLength())

	stacks[l.Cells[0]] = []*card.Card{c(card.Queen, card.Clubs)}
	stacks[l.Cells[1]] = []*card.Card{c(card.Queen, card.Hearts)}
	stacks[l.Cells[2]] = []*card.Card{c(card.Queen, card.Spades)}
	setTable(s, stacks, nil)
	assert.Equal(t, 2, t0.MovableRunLength())
}

func TestFreecellCellHoldsOneCard(t *testing.T) {
	s := newTestSession(t, Freecell, nil)
	l := s.Layout()
	setTable(s, map[int][]*card.Card{
		l.Tableau[0]: {c(9, card.Clubs), c(4, card.Hearts)},
	}, nil)

	require.True(t, s.PickUpRun(l.Tableau[0], 1))
	require.True(t, s.DropAttempt(l.Cells[0], 0))
	assert.Equal(t, 1, s.Anchor(l.Cells[0]).Count())

	require.True(t, s.PickUpRun(l.Tableau[0], 1))
	assert.False(t, s.DropAttempt(l.Cells[0], 1))
	assert.Equal(t, 1, s.Anchor(l.Tableau[0]).Count())
	assert.Equal(t, "Freecell", s.TypeString())
}

func TestFreecellSmartMoveUsesCells(t *testing.T) {
	opts := DefaultOptions()
	s := newTestSession(t, Freecell, &opts)
	l := s.Layout()
	setTable(s, map[int][]*card.Card{
		l.Cells[2]:   {c(2, card.Hearts)},
		l.Tableau[0]: {c(card.Ace, card.Hearts)},
	}, nil)

	require.True(t, s.PickUpRun(l.Tableau[0], 1))
	require.True(t, s.Fling())
	assert.Equal(t, 2, s.Anchor(l.Sinks[0]).Count())
	assert.Equal(t, 0, s.Anchor(l.Cells[2]).Count())
}

func TestFortyThievesDealsOneCard(t *testing.T) {
	s := newTestSession(t, FortyThieves, nil)
	l := s.Layout()
	assert.Equal(t, "64 cards left", s.Status())
	assert.Equal(t, "Forty Thieves", s.TypeString())

	require.True(t, s.Deal())
	assert.Equal(t, 1, s.Anchor(l.Waste).Count())
	assert.Equal(t, "63 cards left", s.Status())

	for i := 0; i < 63; i++ {
		require.True(t, s.Deal())
	}
	assert.True(t, s.Anchor(l.DrawPile).Done())
	s.Deal()
	assert.Len(t, s.History(), 64)
	assert.Equal(t, "0 cards left", s.Status())
}

func TestFortyThievesMovesSameSuitRuns(t *testing.T) {
	s := newTestSession(t, FortyThieves, nil)
	l := s.Layout()
	stacks := map[int][]*card.Card{
		l.Tableau[0]: {c(9, card.Clubs), c(8, card.Clubs), c(7, card.Clubs)},
	}
	for _, id := range l.Tableau[1:] {
		stacks[id] = []*card.Card{c(card.King, card.Hearts)}
	}
	setTable(s, stacks, nil)
	// no empty columns: only the top card may move
	assert.Equal(t, 1, s.Anchor(l.Tableau[0]).MovableRunLength())

	setTable(s, map[int][]*card.Card{
		l.Tableau[0]: {c(9, card.Clubs), c(8, card.Clubs), c(7, card.Clubs)},
	}, nil)
	assert.Equal(t, 3, s.Anchor(l.Tableau[0]).MovableRunLength())
}

func TestGameNames(t *testing.T) {
	tests := []struct {
		variant Variant
		vegas   bool
		three   bool
		suits   int
		key     string
		title   string
	}{
		{Klondike, false, true, 4, "SolitaireNormalDeal3", "Solitaire Dealing Three Cards"},
		{Klondike, false, false, 4, "SolitaireNormalDeal1", "Solitaire Dealing One Card"},
		{Klondike, true, true, 4, "SolitaireVegasDeal3", "Vegas Solitaire Dealing Three Cards"},
		{Klondike, true, false, 4, "SolitaireVegasDeal1", "Vegas Solitaire Dealing One Card"},
		{Spider, false, true, 1, "Spider1Suit", "Spider One Suit"},
		{Spider, false, true, 2, "Spider2Suit", "Spider Two Suit"},
		{Spider, false, true, 4, "Spider4Suit", "Spider Four Suit"},
		{Freecell, false, true, 4, "Freecell", "Freecell"},
		{FortyThieves, false, true, 4, "Forty Thieves", "Forty Thieves"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			o := DefaultOptions()
			o.AutoMove = AutoMoveNever
			o.Vegas = tt.vegas
			o.DealThree = tt.three
			o.SpiderSuits = tt.suits
			s := newTestSession(t, tt.variant, &o)

			assert.Equal(t, tt.key, s.TypeString())
			assert.Equal(t, tt.title, s.PrettyName())
			assert.Equal(t, tt.title, s.View().Title)
		})
	}
}
