package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/models"
)

func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// TopProducts caches the top-rated listing under a single key. A generation
// counter is bumped on every invalidation; Set only writes when the counter
// still matches the value read before the listing was loaded.
type TopProducts struct {
	rdb    *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

func NewTopProducts(rdb *redis.Client, namespace string, ttl time.Duration) *TopProducts {
	key := namespace + ":products:top"
	return &TopProducts{rdb: rdb, key: key, genKey: key + ":gen", ttl: ttl}
}

// Generation returns the current invalidation counter, 0 if never bumped.
func (c *TopProducts) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns ok=false on a miss.
func (c *TopProducts) Get(ctx context.Context) ([]models.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []models.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// Set stores items if no invalidation happened since gen was read. It reports
// whether the value was written.
func (c *TopProducts) Set(ctx context.Context, items []models.Product, gen int64) (bool, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return false, err
	}

	written := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, c.genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, raw, c.ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, c.genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return written, err
}

func (c *TopProducts) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	return err
}
