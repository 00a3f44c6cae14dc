package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "codeberg.org/algopatterns/academy/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyItem  = "academy:%s:%s:item:%s:%s"
	keyIndex = "academy:%s:%s:index:%s"

	// optimistic update retries when another writer touched the key mid-transaction
	maxUpdateAttempts = 8
)

// key parts may contain the separator (profile ids are "google:123"), so each
// part is escaped before joining
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// implements Store using Redis. items are JSON strings, each partition keeps a
// sorted set of its sort keys so Query can list them in order.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// creates a new Redis-backed store, namespace separates deployments sharing one instance
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

// creates a new Redis-backed store from a URL
func NewRedisStoreFromURL(redisURL, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, namespace: namespace}, nil
}

// returns the underlying client for components sharing the connection
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Get(ctx context.Context, table string, key Key) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	body, err := s.client.Get(ctx, s.itemKey(table, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
	}

	if err != nil {
		return nil, unavailable("get", err)
	}

	return body, nil
}

func (s *RedisStore) Put(ctx context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.itemKey(table, key), body, 0)
		pipe.ZAdd(ctx, s.indexKey(table, key.Partition), redis.Z{Score: 0, Member: key.Sort})
		return nil
	})

	if err != nil {
		return unavailable("put", err)
	}

	return nil
}

func (s *RedisStore) PutIfAbsent(ctx context.Context, table string, key Key, body []byte) error {
	if err := validateKey(table, key); err != nil {
		return err
	}

	var created *redis.BoolCmd

	// the index add is idempotent, so it may run even when SETNX loses
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, s.itemKey(table, key), body, 0)
		pipe.ZAdd(ctx, s.indexKey(table, key.Partition), redis.Z{Score: 0, Member: key.Sort})
		return nil
	})

	if err != nil {
		return unavailable("put if absent", err)
	}

	if !created.Val() {
		return fmt.Errorf("%s %s: %w", table, key, apperrors.ErrConditionFailed)
	}

	return nil
}

func (s *RedisStore) Update(ctx context.Context, table string, key Key, patch map[string]any) ([]byte, error) {
	if err := validateKey(table, key); err != nil {
		return nil, err
	}

	itemKey := s.itemKey(table, key)
	var merged []byte
	var mergeErr error

	txf := func(tx *redis.Tx) error {
		body, err := tx.Get(ctx, itemKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
		}

		if err != nil {
			return unavailable("update", err)
		}

		merged, mergeErr = mergeBody(body, patch)
		if mergeErr != nil {
			return mergeErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemKey, merged, 0)
			return nil
		})

		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, itemKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if mergeErr != nil {
			return nil, mergeErr
		}

		if err != nil {
			if apperrors.IsNotFound(err) || apperrors.IsStoreUnavailable(err) {
				return nil, err
			}

			return nil, unavailable("update", err)
		}

		return merged, nil
	}

	return nil, unavailable("update", fmt.Errorf("%s %s changed on every attempt", table, key))
}

func (s *RedisStore) Query(ctx context.Context, table string, partition string) ([][]byte, error) {
	if err := validateKey(table, Key{Partition: partition}); err != nil {
		return nil, err
	}

	// equal scores keep members in lexicographic order
	sortKeys, err := s.client.ZRange(ctx, s.indexKey(table, partition), 0, -1).Result()
	if err != nil {
		return nil, unavailable("query", err)
	}

	if len(sortKeys) == 0 {
		return nil, nil
	}

	itemKeys := make([]string, 0, len(sortKeys))
	for _, sk := range sortKeys {
		itemKeys = append(itemKeys, s.itemKey(table, Key{Partition: partition, Sort: sk}))
	}

	values, err := s.client.MGet(ctx, itemKeys...).Result()
	if err != nil {
		return nil, unavailable("query", err)
	}

	bodies := make([][]byte, 0, len(values))
	for _, value := range values {
		// index entry without an item, skip it
		str, ok := value.(string)
		if !ok {
			continue
		}

		bodies = append(bodies, []byte(str))
	}

	return bodies, nil
}

// closes the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) itemKey(table string, key Key) string {
	return fmt.Sprintf(keyItem, keyPart(s.namespace), keyPart(table), keyPart(key.Partition), keyPart(key.Sort))
}

func (s *RedisStore) indexKey(table, partition string) string {
	return fmt.Sprintf(keyIndex, keyPart(s.namespace), keyPart(table), keyPart(partition))
}

func keyPart(part string) string {
	return keyEscaper.Replace(part)
}
