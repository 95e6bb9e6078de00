package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/fts/internal/db"
)

// Get retrieves a value by key. With client-side caching on, repeated reads
// of a hot key are served from local memory until the server invalidates it.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var res rueidis.RedisResult
	if s.cacheTTL > 0 {
		res = s.client.DoCache(ctx, s.b().Get().Key(key).Cache(), s.cacheTTL)
	} else {
		res = s.do(ctx, s.b().Get().Key(key).Build())
	}
	data, err := res.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Removing a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
