// internal/game/play_test.go
package game

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playConfig struct {
	name    string
	variant Variant
	opts    Options
}

func playConfigs() []playConfig {
	opts := func(dealThree, vegas bool, suits int, auto AutoMoveLevel) Options {
		return Options{DealThree: dealThree, Vegas: vegas, SpiderSuits: suits, AutoMove: auto}
	}
	return []playConfig{
		{"klondike deal three", Klondike, opts(true, false, 1, AutoMoveAlways)},
		{"klondike vegas deal one", Klondike, opts(false, true, 1, AutoMoveNever)},
		{"klondike vegas deal three", Klondike, opts(true, true, 1, AutoMoveFlingOnly)},
		{"spider one suit", Spider, opts(true, false, 1, AutoMoveAlways)},
		{"spider two suits", Spider, opts(true, false, 2, AutoMoveNever)},
		{"spider four suits", Spider, opts(true, false, 4, AutoMoveFlingOnly)},
		{"freecell", Freecell, opts(true, false, 1, AutoMoveAlways)},
		{"forty thieves", FortyThieves, opts(true, false, 1, AutoMoveFlingOnly)},
	}
}

// playRandom performs one random player intent.
func playRandom(s *Session, rng *rand.Rand) {
	switch n := rng.Intn(20); {
	case n < 4:
		s.Deal()
	case n < 14:
		src := rng.Intn(s.StackCount())
		movable := s.Anchor(src).MovableRunLength()
		if movable == 0 {
			return
		}
		if s.PickUpRun(src, 1+rng.Intn(movable)) {
			s.DropAttempt(rng.Intn(s.StackCount()), rng.Intn(2))
		}
	case n < 17:
		src := rng.Intn(s.StackCount())
		if s.PickUpRun(src, 1) {
			s.Fling()
		}
	case n < 19:
		s.Undo()
	default:
		if rng.Intn(10) == 0 {
			s.RestartGame()
		}
	}
}

func encodedState(t *testing.T, s *Session) string {
	t.Helper()
	data, err := s.Snapshot().Encode()
	require.NoError(t, err)
	return string(data)
}

func TestRandomPlayUndoAndReplay(t *testing.T) {
	const seeds, steps = 8, 250
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, pc := range playConfigs() {
		t.Run(pc.name, func(t *testing.T) {
			for seed := int64(1); seed <= seeds; seed++ {
				s, err := NewSession(pc.variant, pc.opts, seed, testLogger())
				require.NoError(t, err)
				s.SetClock(func() time.Time { return now })
				rng := rand.New(rand.NewSource(seed))

				for step := 0; step < steps; step++ {
					where := fmt.Sprintf("seed %d step %d", seed, step)
					before := encodedState(t, s)
					moves := len(s.History())

					playRandom(s, rng)
					require.NoError(t, s.SanityCheck(), where)
					require.Contains(t, []Mode{ModeNormal, ModeWin}, s.Mode(), where)

					added := len(s.History()) - moves
					if step%3 != 0 || added <= 0 {
						continue
					}
					for i := 0; i < added; i++ {
						require.True(t, s.Undo(), where)
					}
					require.Equal(t, before, encodedState(t, s), "undo restores the table: %s", where)
				}

				if len(s.History()) == 0 {
					continue
				}
				table, history, score := tableSig(s), s.History(), s.Score()
				require.True(t, s.StartReplay())
				assert.Equal(t, table, tableSig(s), "seed %d", seed)
				assert.Equal(t, history, s.History(), "seed %d", seed)
				assert.Equal(t, score, s.Score(), "seed %d", seed)
				require.NoError(t, s.SanityCheck())
			}
		})
	}
}

func TestRandomPlayWithAnimator(t *testing.T) {
	const seeds, steps = 4, 200

	for _, pc := range playConfigs() {
		t.Run(pc.name, func(t *testing.T) {
			for seed := int64(1); seed <= seeds; seed++ {
				s, err := NewSession(pc.variant, pc.opts, seed, testLogger())
				require.NoError(t, err)
				s.SetAnimator(&mockAnimator{})
				rng := rand.New(rand.NewSource(seed))

				for step := 0; step < steps; step++ {
					where := fmt.Sprintf("seed %d step %d", seed, step)
					playRandom(s, rng)
					require.NoError(t, s.SanityCheck(), where)

					if rng.Intn(2) == 0 {
						s.CancelAnimation()
					} else {
						for s.FinishAnimation() {
							require.NoError(t, s.SanityCheck(), where)
						}
					}
					require.Empty(t, s.InFlight(), where)
					require.NoError(t, s.SanityCheck(), where)
				}
			}
		})
	}
}
