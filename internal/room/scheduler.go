// internal/room/scheduler.go
package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// startFlowLocked shows the first question and arms the first automatic advance.
// With an empty catalog nothing is shown and nothing is armed.
// Assumes the room lock is held.
func (s *Service) startFlowLocked(r *Room) {
	q, ok := s.catalog.At(r.currentQuestionIndex)
	if !ok {
		s.roomLog(r).Warn("round started with an empty catalog, no questions will be shown")
		return
	}
	s.broadcast(r, EventQuestionShown, QuestionPayload{
		Idx:      r.currentQuestionIndex,
		Question: q,
		Timer:    r.autoQuestionTimer,
	})
	s.armAdvanceLocked(r)
}

// timerDuration converts a timer value to a delay, capped at MaxQuestionTimer units
// so a huge value cannot overflow into a negative duration.
func (s *Service) timerDuration(units float64) time.Duration {
	if units > MaxQuestionTimer {
		units = MaxQuestionTimer
	}
	return time.Duration(units * float64(s.timeUnit))
}

// armAdvanceLocked schedules one automatic advance for the current question using
// the room's current timer value. Any earlier pending advance is cancelled.
// Assumes the room lock is held.
func (s *Service) armAdvanceLocked(r *Room) {
	s.cancelAdvanceLocked(r)
	gen := r.timerGen
	idx := r.currentQuestionIndex
	r.timer = time.AfterFunc(s.timerDuration(r.autoQuestionTimer), func() {
		s.onAdvanceTimer(r, gen, idx)
	})
}

// cancelAdvanceLocked stops the pending advance, if any. Bumping the generation also
// disarms a callback that already fired and is waiting for the lock.
// Assumes the room lock is held.
func (s *Service) cancelAdvanceLocked(r *Room) {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

// onAdvanceTimer runs when an armed advance fires. It advances only if nothing has
// moved the room on since the timer was armed.
func (s *Service) onAdvanceTimer(r *Room, gen uint64, idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || gen != r.timerGen || !r.roundActive || r.currentQuestionIndex != idx {
		s.roomLog(r).WithFields(logrus.Fields{
			"question": idx,
			"current":  r.currentQuestionIndex,
			"closed":   r.closed,
		}).Debug("stale advance timer fired, ignoring")
		return
	}
	r.timer = nil
	s.advanceLocked(r, uuid.Nil)
}

// advanceLocked closes the current question and either shows the next one or ends
// the round. Manual and timed advances both land here, under the room lock, so a
// question is evaluated at most once.
// Assumes the room lock is held and the round is active.
func (s *Service) advanceLocked(r *Room, actor uuid.UUID) {
	s.cancelAdvanceLocked(r)

	closed := r.currentQuestionIndex
	results := r.closeQuestionLocked(s.catalog)
	s.broadcast(r, EventAnswerResults, AnswerResultsPayload{PerPlayer: results})
	s.broadcast(r, EventScoresUpdated, ScoresPayload{Players: r.playersLocked()})
	if r.autoLeaderboard {
		s.broadcast(r, EventLeaderboard, LeaderboardPayload{Leaderboard: r.leaderboardLocked()})
	}
	s.logAction(r, actor, ActionAdvance, map[string]interface{}{
		"question": closed,
		"manual":   actor != uuid.Nil,
	})

	if r.currentQuestionIndex < s.catalog.Len()-1 {
		r.currentQuestionIndex++
		r.answers = make(map[uuid.UUID]interface{})
		q, _ := s.catalog.At(r.currentQuestionIndex)
		s.broadcast(r, EventQuestionChanged, QuestionPayload{
			Idx:      r.currentQuestionIndex,
			Question: q,
			Timer:    r.autoQuestionTimer,
		})
		s.armAdvanceLocked(r)
	} else {
		r.roundActive = false
		s.broadcast(r, EventRoundEnded, nil)
		s.logAction(r, actor, ActionRoundEnd, nil)
		s.saveRoundResult(r)
		s.roomLog(r).Info("round ended")
	}
	s.broadcastState(r)
}
