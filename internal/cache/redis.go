// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that carries room action records.
const DefaultQueueName = "trivia_actions"

// Connect opens a Redis client and checks that the server answers.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Journal is a Redis list of room action records. The room service pushes onto
// the tail and the historian pops from the head.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// NewJournal returns a journal on the given list. An empty queue name uses DefaultQueueName.
func NewJournal(rdb *redis.Client, queue string) *Journal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Journal{rdb: rdb, queue: queue}
}

// Queue returns the name of the Redis list.
func (j *Journal) Queue() string {
	return j.queue
}

// Publish serializes the record and pushes it onto the queue.
func (j *Journal) Publish(ctx context.Context, rec room.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queue, err)
	}
	return nil
}

// Pop waits up to timeout for the next record. ok is false when nothing arrived in time.
// A malformed entry is consumed and reported as an error.
func (j *Journal) Pop(ctx context.Context, timeout time.Duration) (rec room.ActionRecord, ok bool, err error) {
	res, err := j.rdb.BLPop(ctx, timeout, j.queue).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("BLPop %s: %w", j.queue, err)
	}
	// res[0] is the list name, res[1] the payload
	if len(res) < 2 {
		return rec, false, nil
	}
	rec, err = DecodeAction([]byte(res[1]))
	if err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// DecodeAction parses one queued record. Records without a room code are rejected.
func DecodeAction(data []byte) (room.ActionRecord, error) {
	var rec room.ActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("invalid action record: %w", err)
	}
	if rec.RoomCode == "" || rec.ActionType == "" {
		return rec, fmt.Errorf("invalid action record: missing room code or action type")
	}
	return rec, nil
}
