package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// Querier is the subset of *pgxpool.Pool the catalog loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres reads every row of the questions table, ordered by position.
func LoadPostgres(ctx context.Context, db Querier, logger *logrus.Logger) (*Catalog, error) {
	q := `
		SELECT body
		FROM questions
		ORDER BY position, id
	`
	rows, err := db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		records = append(records, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return FromRecords(records, logger), nil
}
