package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "codeberg.org/algopatterns/academy/internal/errors"
)

var errClosed = errors.New("store is closed")

// addresses one item in a table. Sort is empty for tables keyed by partition only.
type Key struct {
	Partition string
	Sort      string
}

func (k Key) String() string {
	if k.Sort == "" {
		return k.Partition
	}

	return k.Partition + "/" + k.Sort
}

// document store contract shared by the memory, postgres and redis backends.
// bodies are JSON objects.
type Store interface {
	// returns the item body or ErrNotFound
	Get(ctx context.Context, table string, key Key) ([]byte, error)

	// writes the item, replacing any existing body
	Put(ctx context.Context, table string, key Key, body []byte) error

	// writes the item only if the key is free, otherwise ErrConditionFailed
	PutIfAbsent(ctx context.Context, table string, key Key, body []byte) error

	// merges top-level fields of patch into the existing body and returns the result.
	// fields absent from patch are kept. ErrNotFound if the item does not exist.
	Update(ctx context.Context, table string, key Key, patch map[string]any) ([]byte, error)

	// returns every item body under a partition, ordered by sort key
	Query(ctx context.Context, table string, partition string) ([][]byte, error)

	Close() error
}

// wraps a backend failure into the unavailable category
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStoreUnavailable, err)
}

// merges patch fields into body, both JSON objects
func mergeBody(body []byte, patch map[string]any) ([]byte, error) {
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored item: %w", err)
	}

	for field, value := range patch {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", field, err)
		}

		doc[field] = raw
	}

	return json.Marshal(doc)
}

func validateKey(table string, key Key) error {
	if table == "" {
		return fmt.Errorf("table name is empty: %w", apperrors.ErrValidation)
	}

	if key.Partition == "" {
		return fmt.Errorf("partition key is empty: %w", apperrors.ErrValidation)
	}

	return nil
}
