package respcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/fts/internal/db"
	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/wire"
)

// memStore is an in-memory store.
type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

// fakeEngine implements engine.Engine with a canned response.
type fakeEngine struct {
	rows     [][]byte
	metadata []byte
	err      error
	calls    int
}

func (f *fakeEngine) ExecuteSearch(_ context.Context, _ wire.Body, _ engine.ExecOptions) (engine.RowStream, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return engine.NewSliceStream(f.rows, f.metadata), nil
}
