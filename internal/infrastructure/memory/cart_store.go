package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jhoicas/pdv-api/internal/application/cart"
)

var (
	_ cart.Store  = (*CartStore)(nil)
	_ cart.Locker = (*Locker)(nil)
)

// CartStore carritos de sesión en memoria con TTL. Guarda JSON para no compartir punteros.
type CartStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cartEntry
	now   func() time.Time
}

type cartEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCartStore construye el store; ttl <= 0 deshabilita la expiración.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{ttl: ttl, items: make(map[string]cartEntry), now: time.Now}
}

// Load devuelve el snapshot o nil si no existe o expiró.
func (s *CartStore) Load(_ context.Context, sessionID string) (*cart.Snapshot, error) {
	s.mu.Lock()
	e, ok := s.items[sessionID]
	if ok && s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.items, sessionID)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(e.data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save guarda el snapshot renovando el TTL.
func (s *CartStore) Save(_ context.Context, snap *cart.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[snap.SessionID] = cartEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete borra el carrito de la sesión.
func (s *CartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.items, sessionID)
	s.mu.Unlock()
	return nil
}

// Locker un mutex por clave, válido dentro de un solo proceso.
// La entrada de una clave se borra cuando nadie la tiene ni la espera.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocker construye el locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyLock)}
}

// Lock bloquea key hasta obtenerla o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, k)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-k.ch
			l.release(key, k)
		})
		return nil
	}, nil
}

func (l *Locker) release(key string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
