package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionArgs(t *testing.T) {
	actor := uuid.New()
	args, err := actionArgs(room.ActionRecord{
		RoomCode:      "ABCD",
		ActionIndex:   7,
		ActorID:       actor,
		ActionType:    room.ActionSubmitAnswer,
		ActionPayload: map[string]interface{}{"answer": 1},
		Timestamp:     1700000000123,
	})
	require.NoError(t, err)
	require.Len(t, args, 6)

	assert.Equal(t, "ABCD", args[0])
	assert.Equal(t, 7, args[1])
	require.NotNil(t, args[2])
	assert.Equal(t, actor, *args[2].(*uuid.UUID))
	assert.Equal(t, room.ActionSubmitAnswer, args[3])
	assert.JSONEq(t, `{"answer":1}`, string(args[4].([]byte)))
	assert.Equal(t, time.UnixMilli(1700000000123).UTC(), args[5])
}

func TestActionArgsTimerActor(t *testing.T) {
	args, err := actionArgs(room.ActionRecord{RoomCode: "ABCD", ActionType: room.ActionAdvance})
	require.NoError(t, err)
	assert.Nil(t, args[2].(*uuid.UUID))
	assert.JSONEq(t, `{}`, string(args[4].([]byte)))
}

func TestActionArgsUnencodablePayload(t *testing.T) {
	_, err := actionArgs(room.ActionRecord{
		RoomCode:      "ABCD",
		ActionType:    room.ActionSubmitAnswer,
		ActionPayload: map[string]interface{}{"answer": make(chan int)},
	})
	assert.Error(t, err)
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, *nullTime(now))
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"questions", "round_results", "round_scores", "room_actions"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
