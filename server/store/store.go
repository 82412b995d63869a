package store

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close() error                   { db.Pool.Close(); return nil }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }
func (db *DB) Kind() string                   { return "postgres" }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// Load returns the persisted running count, 0 when no row exists yet.
func (db *DB) Load(ctx context.Context) (int, error) {
	var v int
	err := db.QueryRow(ctx, `SELECT value FROM running_count WHERE id = 1`).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func (db *DB) Save(ctx context.Context, value int) error {
	_, err := db.Exec(ctx, `
		INSERT INTO running_count(id, value)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE
		   SET value = EXCLUDED.value,
		       updated_at = now()
	`, value)
	return err
}
