package db

import (
	"context"
	"database/sql"

	"knead/config"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewBunDB opens a bun handle over pgdriver and verifies connectivity with a ping.
func NewBunDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Bun.DSN))
	sqlDB := sql.OpenDB(connector)
	bunDB := bun.NewDB(sqlDB, pgdialect.New())

	if err := sqlDB.PingContext(ctx); err != nil {
		bunDB.Close()
		return nil, errors.Wrap(err, "db.NewBunDB.Ping")
	}
	return bunDB, nil
}

// Migrate creates the schema for the given models and the pair-uniqueness
// index conversations rely on.
func Migrate(ctx context.Context, bunDB *bun.DB, models ...any) error {
	for _, m := range models {
		if _, err := bunDB.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "db.Migrate.CreateTable %T", m)
		}
	}
	_, err := bunDB.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversation_pair ON conversations (user_lo, user_hi)`)
	if err != nil {
		return errors.Wrap(err, "db.Migrate.PairIndex")
	}
	return nil
}
