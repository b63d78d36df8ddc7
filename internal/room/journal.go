package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Action types recorded in the journal.
const (
	ActionCreateRoom   = "create_room"
	ActionHostJoin     = "host_join"
	ActionPlayerJoin   = "player_join"
	ActionStartQuiz    = "start_quiz"
	ActionSubmitAnswer = "submit_answer"
	ActionAdvance      = "advance"
	ActionSetPrefs     = "set_prefs"
	ActionLeave        = "leave"
	ActionHostLeft     = "host_left"
	ActionRoundEnd     = "round_end"
	ActionRoomRemoved  = "room_removed"
)

// ActionRecord is one accepted room action, as shipped to the historian.
type ActionRecord struct {
	RoomCode      string                 `json:"room_code"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       uuid.UUID              `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Journal receives action records. Implementations may do network I/O;
// they are always called off the room lock.
type Journal interface {
	Publish(ctx context.Context, rec ActionRecord) error
}

// PlayerScore is a player's final standing in a finished round.
type PlayerScore struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
}

// RoundResult summarises a finished round.
type RoundResult struct {
	RoomCode      string        `json:"room_code"`
	QuestionCount int           `json:"question_count"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       time.Time     `json:"ended_at"`
	Scores        []PlayerScore `json:"scores"`
}

// ResultStore persists finished rounds.
type ResultStore interface {
	SaveRoundResult(ctx context.Context, res RoundResult) error
}

const collaboratorTimeout = 2 * time.Second

// logAction numbers the action and publishes it asynchronously.
// Assumes the room lock is held.
func (s *Service) logAction(r *Room, actor uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if s.journal == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := ActionRecord{
		RoomCode:      r.code,
		ActionIndex:   r.actionIndex,
		ActorID:       actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		if err := s.journal.Publish(ctx, rec); err != nil {
			s.logger.WithFields(logrus.Fields{
				"room":   rec.RoomCode,
				"action": rec.ActionType,
				"index":  rec.ActionIndex,
			}).WithError(err).Warn("failed to publish room action")
		}
	}(rec)
}

// saveRoundResult persists the finished round asynchronously.
// Assumes the room lock is held.
func (s *Service) saveRoundResult(r *Room) {
	if s.results == nil {
		return
	}
	res := RoundResult{
		RoomCode:      r.code,
		QuestionCount: s.catalog.Len(),
		StartedAt:     r.roundStartedAt,
		EndedAt:       time.Now(),
	}
	for _, p := range r.playersLocked() {
		res.Scores = append(res.Scores, PlayerScore{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	go func(res RoundResult) {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		if err := s.results.SaveRoundResult(ctx, res); err != nil {
			s.logger.WithField("room", res.RoomCode).WithError(err).Warn("failed to save round result")
		}
	}(res)
}
