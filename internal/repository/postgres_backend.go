package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of pgxpool.Pool the store needs.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend keeps documents in the content_documents table.
type PostgresBackend struct {
	pool Pool
}

func NewPostgresBackend(pool Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		data    []byte
		version int64
	)
	err := b.pool.QueryRow(ctx,
		"SELECT document, version FROM content_documents WHERE key = $1", key,
	).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load content document: %w", err)
	}
	return data, version, nil
}

func (b *PostgresBackend) Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if expectedVersion == 0 {
		tag, err = b.pool.Exec(ctx,
			`INSERT INTO content_documents (key, version, document) VALUES ($1, 1, $2)
			ON CONFLICT (key) DO NOTHING`,
			key, data,
		)
	} else {
		tag, err = b.pool.Exec(ctx,
			`UPDATE content_documents SET document = $1, version = version + 1, updated_at = NOW()
			WHERE key = $2 AND version = $3`,
			data, key, expectedVersion,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save content document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}
