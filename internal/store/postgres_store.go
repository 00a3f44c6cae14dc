package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "codeberg.org/algopatterns/academy/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// statements the store runs, satisfied by *pgxpool.Pool
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// implements Store using PostgreSQL, one JSONB table per logical table
type PostgresStore struct {
	db Querier
}

// creates a new PostgreSQL store
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the given tables if they don't exist
func (s *PostgresStore) Initialize(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := s.db.Exec(ctx, statement(queryCreateTable, table)); err != nil {
			return unavailable("create table "+table, err)
		}
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, table string, key Key) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	var body []byte

	err := s.db.QueryRow(ctx, statement(queryGet, table), key.Partition, key.Sort).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
	}

	if err != nil {
		return nil, unavailable("get", err)
	}

	return body, nil
}

func (s *PostgresStore) Put(ctx context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, statement(queryPut, table), key.Partition, key.Sort, string(body)); err != nil {
		return unavailable("put", err)
	}

	return nil
}

func (s *PostgresStore) PutIfAbsent(ctx context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, statement(queryPutIfAbsent, table), key.Partition, key.Sort, string(body))
	if err != nil {
		return unavailable("put if absent", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, key, apperrors.ErrConditionFailed)
	}

	return nil
}

func (s *PostgresStore) Update(ctx context.Context, table string, key Key, patch map[string]any) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	var body []byte

	err = s.db.QueryRow(ctx, statement(queryUpdate, table), key.Partition, key.Sort, string(encoded)).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
	}

	if err != nil {
		return nil, unavailable("update", err)
	}

	return body, nil
}

func (s *PostgresStore) Query(ctx context.Context, table string, partition string) ([][]byte, error) {
	if err := validateKey(table, Key{Partition: partition}); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, statement(queryPartition, table), partition)
	if err != nil {
		return nil, unavailable("query", err)
	}

	defer rows.Close()
	var bodies [][]byte

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, unavailable("scan", err)
		}

		bodies = append(bodies, body)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("query", err)
	}

	return bodies, nil
}

// the pool is owned by the server, closing the store leaves it open
func (s *PostgresStore) Close() error {
	return nil
}

func statement(query, table string) string {
	return fmt.Sprintf(query, pgx.Identifier{table}.Sanitize())
}
