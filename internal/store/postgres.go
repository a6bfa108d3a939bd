package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const changeChannel = "kv_changes"

const (
	createKVTableQuery = `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	getValueQuery = `SELECT value FROM kv_store WHERE key = $1`
	upsertQuery   = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	deleteQuery     = `DELETE FROM kv_store WHERE key = $1`
	deleteManyQuery = `DELETE FROM kv_store WHERE key = ANY($1) RETURNING key`
	keysQuery       = `SELECT key FROM kv_store WHERE left(key, length($1)) = $1 ORDER BY key`
	notifyQuery     = `SELECT pg_notify($1, $2)`
)

// PostgresStore keeps every document as a row of the kv_store table. When a
// DSN is supplied writes are announced with NOTIFY and Watch listens for them.
type PostgresStore struct {
	db     *sql.DB
	dsn    string
	origin string
}

func NewPostgres(db *sql.DB, dsn string) *PostgresStore {
	return &PostgresStore{db: db, dsn: dsn, origin: uuid.NewString()}
}

// EnsureSchema creates the kv_store table when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createKVTableQuery); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresStore) Origin() string { return p.origin }

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, getValueQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertQuery, key, string(value)); err != nil {
		return err
	}
	return p.notify(ctx, key)
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return err
	}
	return p.notify(ctx, key)
}

func (p *PostgresStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	rows, err := p.db.QueryContext(ctx, deleteManyQuery, pq.Array(keys))
	if err != nil {
		return err
	}
	deleted := make([]string, 0, len(keys))
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return err
		}
		deleted = append(deleted, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, k := range deleted {
		if err := p.notify(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, keysQuery, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func (p *PostgresStore) notify(ctx context.Context, key string) error {
	if p.dsn == "" {
		return nil
	}
	payload, err := json.Marshal(Change{Key: key, Origin: p.origin})
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, notifyQuery, changeChannel, string(payload))
	return err
}

// Watch listens on the change channel with a dedicated lib/pq listener.
func (p *PostgresStore) Watch(ctx context.Context) (<-chan Change, error) {
	if p.dsn == "" {
		return nil, errors.New("postgres change feed needs a DSN")
	}
	listener := pq.NewListener(p.dsn, time.Second, time.Minute, nil)
	if err := listener.Listen(changeChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", changeChannel, err)
	}

	out := make(chan Change, 64)
	go func() {
		defer close(out)
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil notification means the connection was re-established
				if n == nil {
					continue
				}
				c, err := decodeChange(n.Extra)
				if err != nil {
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
