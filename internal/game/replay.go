// internal/game/replay.go
package game

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// replayStep moves one run. commit is the history entry to re-record once
// the step lands; for a fan-out only its last step carries it.
type replayStep struct {
	move   Move
	commit *Move
}

type replayState struct {
	active      bool
	steps       []replayStep // LIFO, next step last
	oldIgnore   bool
	wonBefore   bool
	stepsPlayed int
}

// StartReplay rewinds the game to its initial deal and plays every move
// again, one transfer at a time, through the animator. Rule events are
// ignored while replaying; the finished replay leaves board and history as
// they were.
func (s *Session) StartReplay() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	defer s.drain()

	if (s.mode != ModeNormal && s.mode != ModeWin) || s.replay.active || s.history.Len() == 0 {
		return false
	}

	s.replay = replayState{oldIgnore: s.ignoreEvents, wonBefore: s.won}
	s.ignoreEvents = true
	s.releaseHeld()

	for s.history.Len() > 0 {
		m, _ := s.history.Peek()
		if m.IsFanOut() && m.ToBegin < m.ToEnd {
			full := m
			for i := m.ToEnd; i >= m.ToBegin; i-- {
				step := replayStep{move: NewMove(m.From, i, m.Count, false, false)}
				if i == m.ToEnd {
					step.commit = &full
				}
				s.replay.steps = append(s.replay.steps, step)
			}
		} else {
			committed := m
			s.replay.steps = append(s.replay.steps, replayStep{move: m, commit: &committed})
		}
		s.undo()
	}

	s.replay.active = true
	s.mode = ModeAnimate
	s.logAction("replay_start", map[string]interface{}{"steps": len(s.replay.steps)})
	s.playNext()
	return true
}

// StopReplay abandons the replay. Moves already replayed stay on the board
// and in history.
func (s *Session) StopReplay() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.stopReplay()
}

func (s *Session) stopReplay() {
	if !s.replay.active {
		return
	}
	s.replay.steps = nil
	s.finishReplay(false)
	s.snapAll()
}

func (s *Session) Replaying() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.replay.active
}

// playNext starts the next replay step, or finishes the replay.
func (s *Session) playNext() {
	if !s.replay.active {
		return
	}
	n := len(s.replay.steps)
	if n == 0 {
		s.finishReplay(true)
		return
	}
	step := s.replay.steps[n-1]
	s.replay.steps = s.replay.steps[:n-1]

	m := step.move
	from := s.anchor(m.From)
	if m.IsFanOut() || from == nil || s.anchor(m.ToBegin) == nil || m.Count < 1 || from.Count() < m.Count {
		s.logger.WithFields(logrus.Fields{
			"move":   m.String(),
			"played": s.replay.stepsPlayed,
		}).Error("invalid move encountered, aborting replay")
		s.replay.steps = nil
		s.finishReplay(false)
		return
	}

	run := from.PopRun(m.Count)
	if m.Invert() {
		slices.Reverse(run)
	}
	s.animate(run, m.ToBegin, func() {
		if m.Unhide() {
			from.UnhideTop()
		}
		if step.commit != nil {
			s.recommit(*step.commit)
		}
		s.replay.stepsPlayed++
		s.playNext()
	})
}

// recommit puts a replayed move back in history, consuming a redeal again
// where the original move did.
func (s *Session) recommit(m Move) {
	s.history.Push(m)
	if m.AddDealCount() && s.vs.dealsLeft > 0 {
		s.vs.dealsLeft--
	}
}

// finishReplay ends the replay. A replay that ran to completion restores the
// win state it started from; a cut-short one leaves the game open.
func (s *Session) finishReplay(completed bool) {
	s.replay.active = false
	if completed && s.replay.wonBefore {
		s.ignoreEvents = s.replay.oldIgnore
		s.won = true
		s.mode = ModeWin
	} else {
		s.ignoreEvents = false
		s.won = false
		s.mode = ModeNormal
	}
	s.logAction("replay_end", map[string]interface{}{"played": s.replay.stepsPlayed, "completed": completed})
}
