package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/domain"
)

var _ cart.Store = (*CartStore)(nil)

const cartKeyPrefix = "cart:"

// CartStore snapshots de carrito como JSON con TTL renovado en cada Save.
type CartStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewCartStore construye el store; ttl <= 0 guarda sin expiración.
func NewCartStore(rdb *goredis.Client, ttl time.Duration) *CartStore {
	return &CartStore{rdb: rdb, ttl: ttl}
}

// Load devuelve el snapshot o nil si la sesión no tiene carrito.
func (s *CartStore) Load(ctx context.Context, sessionID string) (*cart.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: cart load: %v", domain.ErrStoreUnavailable, err)
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("cart decode %s: %w", sessionID, err)
	}
	return &snap, nil
}

// Save guarda el snapshot.
func (s *CartStore) Save(ctx context.Context, snap *cart.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, cartKeyPrefix+snap.SessionID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: cart save: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Delete borra el carrito de la sesión.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("%w: cart delete: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
