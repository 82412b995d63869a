package store

import (
	"context"
	"log"
	"strings"
)

// Backend is a durable home for the running count.
type Backend interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, value int) error
	Close() error
	Kind() string
}

type Config struct {
	DatabaseURL string
	SQLitePath  string
	FilePath    string
	AutoMigrate bool
}

// OpenBackend prefers PostgreSQL, then SQLite, then the count file. A
// database that cannot be reached falls back to the file.
func OpenBackend(ctx context.Context, cfg Config) (Backend, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := openPostgres(ctx, dsn, cfg.AutoMigrate)
		if err == nil {
			return db, nil
		}
		log.Printf("postgres disabled (open failed): %v", err)
	}
	if p := strings.TrimSpace(cfg.SQLitePath); p != "" {
		s, err := OpenSQLite(p)
		if err == nil {
			return s, nil
		}
		log.Printf("sqlite disabled (open failed): %v", err)
	}
	return OpenFile(cfg.FilePath)
}

func openPostgres(ctx context.Context, dsn string, migrate bool) (*DB, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if migrate {
		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
