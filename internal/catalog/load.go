package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// LoadFile reads the question bank from a JSON file on disk.
func LoadFile(path string, logger *logrus.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", path, err)
	}
	c, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("parse question bank %s: %w", path, err)
	}
	return c, nil
}

// LoadOrEmpty loads the catalog from Postgres when db is non-nil, otherwise from path.
// Any failure degrades to an empty catalog with a warning: rounds can still start
// but no question will ever be shown.
func LoadOrEmpty(ctx context.Context, db Querier, path string, logger *logrus.Logger) *Catalog {
	var (
		c   *Catalog
		err error
	)
	if db != nil {
		c, err = LoadPostgres(ctx, db, logger)
	} else {
		c, err = LoadFile(path, logger)
	}
	if err != nil {
		logger.WithError(err).Warn("no question bank loaded, continuing with an empty catalog")
		return Empty()
	}
	logger.Infof("loaded %d questions", c.Len())
	return c
}
