package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis is the durable Store driver. Every key is a Redis hash with two
// fields: "data" (the document) and "ver" (the version counter). The
// version check and the write happen inside one Lua script, which is what
// makes CompareAndSwap atomic against concurrent writers.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// casScript compares the stored version against ARGV[2] (0 = must not
// exist), then writes data and the bumped version. Returns the new version,
// or -1 on conflict.
var casScript = redis.NewScript(`
local ver = redis.call('HGET', KEYS[1], 'ver')
if ARGV[2] == '0' then
  if ver then return -1 end
else
  if not ver or ver ~= ARGV[2] then return -1 end
end
local newver = (tonumber(ver) or 0) + 1
redis.call('HSET', KEYS[1], 'data', ARGV[1], 'ver', newver)
return newver
`)

func (r *Redis) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	vals, err := r.rdb.HMGet(ctx, key, "data", "ver").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("kvstore: redis get %s: %w", key, err)
	}
	if vals[0] == nil || vals[1] == nil {
		return nil, 0, ErrNotFound
	}
	var ver uint64
	if _, err := fmt.Sscanf(vals[1].(string), "%d", &ver); err != nil {
		return nil, 0, fmt.Errorf("kvstore: redis get %s: bad version: %w", key, err)
	}
	return []byte(vals[0].(string)), ver, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	// HIncrBy creates the hash when missing, so a plain Put still leaves
	// a valid version behind for later CompareAndSwap calls.
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", value)
	pipe.HIncrBy(ctx, key, "ver", 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("kvstore: redis put %s: %w", key, err)
	}
	return nil
}

func (r *Redis) CompareAndSwap(ctx context.Context, key string, value []byte, expected uint64) (uint64, error) {
	res, err := casScript.Run(ctx, r.rdb, []string{key}, value, expected).Int64()
	if err != nil {
		return 0, fmt.Errorf("kvstore: redis cas %s: %w", key, err)
	}
	if res < 0 {
		return 0, ErrVersionConflict
	}
	return uint64(res), nil
}

func (r *Redis) Push(ctx context.Context, prefix string, value []byte) (string, error) {
	seq, err := r.rdb.Incr(ctx, strings.TrimSuffix(prefix, "/")+":seq").Result()
	if err != nil {
		return "", fmt.Errorf("kvstore: redis push %s: %w", prefix, err)
	}
	key := fmt.Sprintf("%s/%012d", strings.TrimSuffix(prefix, "/"), seq)
	if err := r.Put(ctx, key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (r *Redis) List(ctx context.Context, prefix string) ([]KV, error) {
	pattern := strings.TrimSuffix(prefix, "/") + "/*"
	var out []KV

	iter := r.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, _, err := r.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue // deleted between SCAN and HMGET
		}
		if err != nil {
			return nil, err
		}
		out = append(out, KV{Key: key, Value: data})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("kvstore: redis list %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kvstore: redis delete %s: %w", key, err)
	}
	return nil
}

var _ Store = (*Redis)(nil)
