// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/trivia/internal/room"
)

const insertActionQ = `
	INSERT INTO room_actions (
		room_code, action_index, actor_id, action_type, action_payload, occurred_at
	) VALUES ($1, $2, $3, $4, $5, $6)
`

// ActionStore writes journaled room actions to room_actions.
type ActionStore struct {
	db *pgxpool.Pool
}

func NewActionStore(db *pgxpool.Pool) *ActionStore {
	return &ActionStore{db: db}
}

// InsertActions stores a batch of records in a single transaction. Either every
// record is written or none is.
func (s *ActionStore) InsertActions(ctx context.Context, recs []room.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range recs {
			args, err := actionArgs(rec)
			if err != nil {
				return err
			}
			batch.Queue(insertActionQ, args...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert %d room actions: %w", len(recs), err)
		}
		return nil
	})
}

// actionArgs maps a record onto the room_actions columns. Timer-driven actions
// have no actor and are stored with a NULL actor_id.
func actionArgs(rec room.ActionRecord) ([]any, error) {
	payload := rec.ActionPayload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload of %s #%d: %w", rec.RoomCode, rec.ActionIndex, err)
	}
	var actor *uuid.UUID
	if rec.ActorID != uuid.Nil {
		id := rec.ActorID
		actor = &id
	}
	return []any{
		rec.RoomCode,
		rec.ActionIndex,
		actor,
		rec.ActionType,
		jsonPayload,
		time.UnixMilli(rec.Timestamp).UTC(),
	}, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
