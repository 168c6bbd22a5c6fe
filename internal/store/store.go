package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/pkg/kv"
)

var (
	ErrCorruptCollection = errors.New("corrupt collection")
	ErrNotLoaded         = errors.New("store not loaded")
)

// IStore is the single owner of the five entity collections.
type IStore interface {
	Load(ctx context.Context) error
	View(fn func(c *Collections) error) error
	Update(ctx context.Context, fn func(c *Collections) error) error
}

// Store keeps the collections in memory and writes every changed collection
// back to the backend after each successful Update. Writers are serialized
// by mu, which also makes max+1 id assignment safe.
type Store struct {
	mu      sync.RWMutex
	backend kv.Backend
	logger  *zap.Logger
	keyFn   func(name string) string
	seed    Seed

	data    Collections
	encoded map[string][]byte
	loaded  bool
}

type Option func(*Store)

// WithKeyFunc maps a collection name to its backend key, e.g. for namespacing.
func WithKeyFunc(fn func(name string) string) Option {
	return func(s *Store) { s.keyFn = fn }
}

func WithSeed(seed Seed) Option {
	return func(s *Store) { s.seed = seed }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over backend. Call Load before use.
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		keyFn:   func(name string) string { return name },
		seed:    DefaultSeed("Himo", "HIMO001"),
		encoded: make(map[string][]byte, len(Keys)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every collection from the backend. Absent collections are
// seeded and the non-empty seeds are written back. A payload that does not
// decode fails the whole load; seeds never overwrite existing data.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data Collections
	seeds := s.seed.collections()
	writes := make(map[string][]byte)
	encoded := make(map[string][]byte, len(Keys))

	for _, name := range Keys {
		key := s.keyFn(name)
		raw, err := s.backend.Get(ctx, key)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			// 首次启动，写入种子数据
			seeded := seeds.field(name)
			payload, err := json.Marshal(seeded)
			if err != nil {
				return fmt.Errorf("failed to encode seed for %s: %w", name, err)
			}
			if err := json.Unmarshal(payload, data.field(name)); err != nil {
				return fmt.Errorf("failed to copy seed for %s: %w", name, err)
			}
			if seeds.Len(name) > 0 {
				writes[key] = payload
			}
			s.logger.Info("Seeding collection", zap.String("key", key), zap.Int("count", seeds.Len(name)))
		case err != nil:
			return fmt.Errorf("failed to read collection %s: %w", key, err)
		default:
			if err := json.Unmarshal(raw, data.field(name)); err != nil {
				return fmt.Errorf("%w %q: %v", ErrCorruptCollection, key, err)
			}
		}
	}

	// Normalize nil slices so encodings compare stably.
	data = data.Clone()
	for _, name := range Keys {
		payload, err := json.Marshal(data.field(name))
		if err != nil {
			return fmt.Errorf("failed to encode collection %s: %w", name, err)
		}
		encoded[name] = payload
	}

	if len(writes) > 0 {
		if err := s.backend.SetMulti(ctx, writes); err != nil {
			return fmt.Errorf("failed to write seed collections: %w", err)
		}
	}

	s.data = data
	s.encoded = encoded
	s.loaded = true

	s.logger.Info("Store loaded",
		zap.Int("users", len(data.Users)),
		zap.Int("chats", len(data.Chats)),
		zap.Int("messages", len(data.Messages)),
		zap.Int("reports", len(data.Reports)),
		zap.Int("prefixes", len(data.Prefixes)),
	)
	return nil
}

// View runs fn against the live snapshot under a read lock. fn must not
// mutate or retain anything it is handed; copy what you need.
func (s *Store) View(fn func(c *Collections) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	return fn(&s.data)
}

// Update runs fn on a private copy of the collections. If fn fails, nothing
// changes. Otherwise every collection whose encoding changed and that is not
// empty is written in a single SetMulti; empty collections are never written
// back. The in-memory snapshot is swapped only after the write succeeds.
func (s *Store) Update(ctx context.Context, fn func(c *Collections) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	next := s.data.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	next = next.Clone()

	encoded := make(map[string][]byte, len(Keys))
	writes := make(map[string][]byte)
	for _, name := range Keys {
		payload, err := json.Marshal(next.field(name))
		if err != nil {
			return fmt.Errorf("failed to encode collection %s: %w", name, err)
		}
		encoded[name] = payload
		if bytes.Equal(payload, s.encoded[name]) {
			continue
		}
		if next.Len(name) == 0 {
			s.logger.Debug("Skipping write-back of empty collection", zap.String("collection", name))
			continue
		}
		writes[s.keyFn(name)] = payload
	}

	if len(writes) > 0 {
		if err := s.backend.SetMulti(ctx, writes); err != nil {
			return fmt.Errorf("failed to write collections: %w", err)
		}
	}

	s.data = next
	s.encoded = encoded
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
