package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps customer and account records as two Redis lists.
type RedisStore struct {
	client *redis.Client
	prefix string
	codec  Codec
}

func NewRedisStore(client *redis.Client, prefix string, preserveRates bool) *RedisStore {
	if prefix == "" {
		prefix = "ledger"
	}
	return &RedisStore{client: client, prefix: prefix, codec: Codec{PreserveRates: preserveRates}}
}

func (s *RedisStore) customersKey() string { return s.prefix + ":customers" }
func (s *RedisStore) accountsKey() string  { return s.prefix + ":accounts" }

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	customers, err := s.client.LRange(ctx, s.customersKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	accounts, err := s.client.LRange(ctx, s.accountsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	return s.codec.DecodeSnapshot(customers, accounts)
}

// Save writes each list under a temporary key and renames it over the live
// key, so readers never see a half-written list.
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	customers, accounts := s.codec.EncodeSnapshot(snap)
	if err := s.replaceList(ctx, s.customersKey(), customers); err != nil {
		return fmt.Errorf("write customers: %w", err)
	}
	if err := s.replaceList(ctx, s.accountsKey(), accounts); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}
	return nil
}

func (s *RedisStore) replaceList(ctx context.Context, key string, lines []string) error {
	if len(lines) == 0 {
		return s.client.Del(ctx, key).Err()
	}
	tmp := key + ":tmp"
	if err := s.client.Del(ctx, tmp).Err(); err != nil {
		return err
	}
	values := make([]interface{}, len(lines))
	for i, l := range lines {
		values[i] = l
	}
	if err := s.client.RPush(ctx, tmp, values...).Err(); err != nil {
		return err
	}
	return s.client.Rename(ctx, tmp, key).Err()
}
