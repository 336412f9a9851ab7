package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pdv-api/internal/application/receipt"
)

var _ receipt.Cache = (*ReceiptCache)(nil)

const receiptKeyPrefix = "receipt:"

// ReceiptCache PDFs de comprobantes por id de venta.
type ReceiptCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewReceiptCache construye la caché.
func NewReceiptCache(rdb *goredis.Client, ttl time.Duration) *ReceiptCache {
	return &ReceiptCache{rdb: rdb, ttl: ttl}
}

func (c *ReceiptCache) Get(ctx context.Context, saleID string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, receiptKeyPrefix+saleID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *ReceiptCache) Put(ctx context.Context, saleID string, pdf []byte) error {
	return c.rdb.Set(ctx, receiptKeyPrefix+saleID, pdf, c.ttl).Err()
}
