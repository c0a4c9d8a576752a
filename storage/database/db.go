// Package database is a core.Storage kept in a SQL table, for clients sharing one
// Postgres database.
package database

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS client_storage (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	getQuery    = `SELECT value FROM client_storage WHERE key = $1`
	upsertQuery = `INSERT INTO client_storage (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	deleteQuery = `DELETE FROM client_storage WHERE key = $1`
)

type Storage struct {
	db *sqlx.DB
}

var _ core.Storage = (*Storage)(nil)

func dsn(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database, waits for it to answer and makes sure
// the storage table exists.
func Open(conf *core.Config) (*Storage, error) {
	engine := conf.Database.Engine
	if engine == "" {
		engine = "postgres"
	}
	db, err := sqlx.Open(engine, dsn(conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := New(db)
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection; call Migrate once if the table may be missing.
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return errors.Wrap(err, "creating storage table")
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, getQuery, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "getting key")
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, key, value); err != nil {
		return errors.Wrap(err, "setting key")
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return errors.Wrap(err, "removing key")
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
