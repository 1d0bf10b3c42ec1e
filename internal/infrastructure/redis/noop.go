package redis

import (
	"context"
	"time"
)

// NoopClient is a RedisClient that never holds a value. STORAGE=memory runs use it
// so the service works without a Redis server.
type NoopClient struct{}

func (NoopClient) Get(context.Context, string) (string, error) { return "", ErrKeyNotFound }

func (NoopClient) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopClient) Del(context.Context, string) error { return nil }

func (NoopClient) Close() error { return nil }
