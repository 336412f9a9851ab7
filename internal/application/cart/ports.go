package cart

import "context"

// Store persiste snapshots de carritos por sesión.
// Load devuelve (nil, nil) si la sesión no tiene carrito.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// Locker serializa las mutaciones de una misma sesión entre réplicas.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}
