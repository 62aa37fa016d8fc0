package vector

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each store in one Redis hash keyed by document id.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to addr and verifies the connection.
func NewRedisBackend(ctx context.Context, addr, prefix string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

// Key returns the hash key holding store.
func (b *RedisBackend) Key(store string) string {
	return fmt.Sprintf("%s:store:%s", b.prefix, store)
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, store string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	return b.client.HSet(ctx, b.Key(store), doc.ID, data).Err()
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, store, id string) error {
	return b.client.HDel(ctx, b.Key(store), id).Err()
}

// Load implements Backend. Documents come back ordered by id.
func (b *RedisBackend) Load(ctx context.Context, store string) ([]Document, error) {
	fields, err := b.client.HGetAll(ctx, b.Key(store)).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(fields))

	for id, raw := range fields {
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}

		doc.ID = id
		docs = append(docs, doc)
	}

	slices.SortFunc(docs, func(a, b Document) int { return cmp.Compare(a.ID, b.ID) })

	return docs, nil
}

// Clear removes every document of store.
func (b *RedisBackend) Clear(ctx context.Context, store string) error {
	return b.client.Del(ctx, b.Key(store)).Err()
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
