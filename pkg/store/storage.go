package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-redis/redis/v8"
)

const (
	KeyCartItems       = "cartItems"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
	KeyUserInfo        = "userInfo"
)

// Storage holds JSON values by key. Concurrent writers are last-write-wins.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage keeps one <key>.json file per key under Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{Dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.Dir, filepath.Base(key)+".json")
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, true, nil
}

// Set writes through a temp file so readers never see a partial value.
func (f *FileStorage) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.Dir, filepath.Base(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Remove(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// RedisStorage shares client state between processes under a namespace.
type RedisStorage struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisStorage(rdb *redis.Client, namespace string) *RedisStorage {
	return &RedisStorage{rdb: rdb, namespace: namespace}
}

func (r *RedisStorage) key(k string) string { return r.namespace + ":" + k }

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func loadKey(ctx context.Context, st Storage, key string, dst any) error {
	raw, ok, err := st.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// LoadState seeds the initial state from the persisted keys. Missing keys
// keep their initial values.
func LoadState(ctx context.Context, st Storage) (State, error) {
	s := InitialState()

	if err := loadKey(ctx, st, KeyCartItems, &s.Cart.CartItems); err != nil {
		return InitialState(), err
	}
	if s.Cart.CartItems == nil {
		s.Cart.CartItems = []CartItem{}
	}
	if err := loadKey(ctx, st, KeyShippingAddress, &s.Cart.ShippingAddress); err != nil {
		return InitialState(), err
	}
	if err := loadKey(ctx, st, KeyPaymentMethod, &s.Cart.PaymentMethod); err != nil {
		return InitialState(), err
	}
	if err := loadKey(ctx, st, KeyUserInfo, &s.UserLogin.Data); err != nil {
		return InitialState(), err
	}
	return s, nil
}

func persist(ctx context.Context, st Storage, key string, v any) error {
	if st == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return st.Set(ctx, key, raw)
}

func forget(ctx context.Context, st Storage, key string) error {
	if st == nil {
		return nil
	}
	return st.Remove(ctx, key)
}
