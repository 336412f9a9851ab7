package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/domain"
)

var _ cart.Locker = (*Locker)(nil)

// Locker lock distribuido por clave. El TTL acota cuánto puede quedar tomado si el proceso muere.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewLocker construye el locker con TTL de 30s y reintentos lineales hasta ~5s.
func NewLocker(rdb *goredis.Client) *Locker {
	return &Locker{
		client: redislock.New(rdb),
		ttl:    30 * time.Second,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 100),
	}
}

// Lock obtiene key o falla con domain.ErrConcurrencyConflict si sigue ocupada tras los reintentos.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%w: %s ocupado", domain.ErrConcurrencyConflict, key)
		}
		return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrStoreUnavailable, key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
