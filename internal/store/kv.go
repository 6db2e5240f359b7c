package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// KVRepo stores opaque values by key in the kv_entries table. It satisfies
// the storage.Backend contract.
type KVRepo struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *KVRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Get returns the value stored under key.
func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("value").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Limit(1).
		Query()

	var value []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

// Put inserts or replaces the value under key.
func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, r.clock().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(r.dialect).
		Delete(kvTable).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// DeleteAll removes every key.
func (r *KVRepo) DeleteAll(ctx context.Context) error {
	query, args := entsql.Dialect(r.dialect).Delete(kvTable).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (r *KVRepo) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("updated_at").
		From(entsql.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var ms int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query %s: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}
