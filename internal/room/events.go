package room

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/catalog"
)

// EventType names an outbound notification.
type EventType string

const (
	EventRoomCreated        EventType = "roomCreated"
	EventHostAccepted       EventType = "hostAccepted"
	EventJoinedAck          EventType = "joinedAck"
	EventJoinRejected       EventType = "joinRejected"
	EventErrorRoom          EventType = "errorRoom"
	EventAnswerRejected     EventType = "answerRejected"
	EventState              EventType = "state"
	EventPlaySound          EventType = "playSound"
	EventRoundStarted       EventType = "roundStarted"
	EventPlayerAnsweredLive EventType = "playerAnsweredLive"
	EventAnswerResults      EventType = "answerResults"
	EventScoresUpdated      EventType = "scoresUpdated"
	EventLeaderboard        EventType = "leaderboard"
	EventQuestionShown      EventType = "questionShown"
	EventQuestionChanged    EventType = "questionChanged"
	EventRoundEnded         EventType = "roundEnded"
	EventHostLeft           EventType = "hostLeft"
)

// Event is a single outbound message. Payload is nil for signal-only events.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Gateway delivers events to connections. Implementations must not block:
// it is called while a room is locked.
type Gateway interface {
	// Join adds a connection to the broadcast group of a room code.
	Join(conn uuid.UUID, code string)
	// Broadcast delivers an event to every connection in the room's group.
	Broadcast(code string, ev Event)
	// Send delivers an event to a single connection.
	Send(conn uuid.UUID, ev Event)
	// Disband drops the broadcast group of a removed room.
	Disband(code string)
}

type CodePayload struct {
	Code string `json:"code"`
}

type JoinedAckPayload struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type SoundPayload struct {
	Name string `json:"name"`
}

type RoundStartedPayload struct {
	Idx int `json:"idx"`
}

type PlayerAnsweredPayload struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
}

type AnswerResultsPayload struct {
	PerPlayer map[uuid.UUID]Result `json:"perPlayer"`
}

type ScoresPayload struct {
	Players []Player `json:"players"`
}

type LeaderboardPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// QuestionPayload is sent for both questionShown and questionChanged.
type QuestionPayload struct {
	Idx      int              `json:"idx"`
	Question catalog.Question `json:"question"`
	Timer    float64          `json:"timer"`
}
