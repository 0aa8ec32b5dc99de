package postgres

import (
	"context"
	"database/sql"

	"projecthub/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const driverName = "pgx"

type DB struct {
	SQL *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, wrapf(errFailedOpenDatabaseFmt, err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MinConns)
	sqlDB.SetConnMaxLifetime(poolMaxConnLifetime)
	sqlDB.SetConnMaxIdleTime(poolMaxConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, wrapf(errFailedPingDatabaseFmt, err)
	}

	return &DB{SQL: sqlDB}, nil
}

// Wrap adopts an existing handle, e.g. one opened by sqlmock.
func Wrap(sqlDB *sql.DB) *DB {
	return &DB{SQL: sqlDB}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

func (db *DB) Close() {
	if db.SQL != nil {
		db.SQL.Close()
	}
}
