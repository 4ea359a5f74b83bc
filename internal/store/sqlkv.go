package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLKV keeps slots in the kv_slots table.
type SQLKV struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLKV wraps a migrated database.
func NewSQLKV(db *sql.DB, dialect Dialect) *SQLKV {
	return &SQLKV{db: db, dialect: dialect}
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM kv_slots WHERE slot = `+s.dialect.Bind(1), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_slots (slot, payload, updated_at) VALUES (` + s.dialect.Bind(1) + `, ` + s.dialect.Bind(2) + `, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE slot = `+s.dialect.Bind(1), key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLKV) Close() error {
	return s.db.Close()
}
