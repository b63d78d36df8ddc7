// internal/database/results.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/trivia/internal/room"
)

// ResultStore persists finished rounds to round_results and round_scores.
type ResultStore struct {
	db *pgxpool.Pool
}

func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{db: db}
}

// SaveRoundResult writes the round and every player's final score in one transaction.
func (s *ResultStore) SaveRoundResult(ctx context.Context, res room.RoundResult) error {
	roundID := uuid.New()
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO round_results (id, room_code, question_count, started_at, ended_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, q, roundID, res.RoomCode, res.QuestionCount, nullTime(res.StartedAt), res.EndedAt); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, sc := range res.Scores {
			batch.Queue(`
				INSERT INTO round_scores (round_id, player_id, name, score)
				VALUES ($1, $2, $3, $4)
			`, roundID, sc.PlayerID, sc.Name, sc.Score)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("save round result for room %s: %w", res.RoomCode, err)
	}
	return nil
}
