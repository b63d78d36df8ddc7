package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	actor := uuid.New()
	rec, err := DecodeAction([]byte(`{
		"room_code": "ABCD",
		"action_index": 3,
		"actor_id": "` + actor.String() + `",
		"action_type": "submit_answer",
		"action_payload": {"answer": "1"},
		"timestamp": 1700000000000
	}`))
	require.NoError(t, err)
	assert.Equal(t, room.ActionRecord{
		RoomCode:      "ABCD",
		ActionIndex:   3,
		ActorID:       actor,
		ActionType:    room.ActionSubmitAnswer,
		ActionPayload: map[string]interface{}{"answer": "1"},
		Timestamp:     1700000000000,
	}, rec)
}

func TestDecodeActionRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"action_type": "advance"}`,
		`{"room_code": "ABCD"}`,
	} {
		_, err := DecodeAction([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestNewJournalDefaultQueue(t *testing.T) {
	assert.Equal(t, DefaultQueueName, NewJournal(nil, "").Queue())
	assert.Equal(t, "custom", NewJournal(nil, "custom").Queue())
}

func TestPublishReportsUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := NewJournal(rdb, "").Publish(ctx, room.ActionRecord{RoomCode: "ABCD", ActionType: room.ActionAdvance})
	assert.Error(t, err)
}
