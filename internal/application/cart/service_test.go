package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/infrastructure/memory"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

func newService(t *testing.T) (*cart.Service, *memory.CartStore) {
	t.Helper()
	s := memory.New()
	s.SeedProduct(&entity.Product{ID: "p1", Name: "Caderno", Price: decimal.RequireFromString("19.99"), Stock: 3, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "p2", Name: "Mochila", Price: decimal.RequireFromString("49.99"), Stock: 3, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "off", Name: "Inativo", Price: decimal.RequireFromString("1"), IsActive: false})
	store := memory.NewCartStore(time.Hour)
	return cart.NewService(store, memory.NewLocker(), memory.NewProductRepository(s), logger.Nop()), store
}

func TestService_AgregaYPersiste(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "p1"})
	require.NoError(t, err)
	resp, err := svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, 3, resp.ItemCount)
	assert.Equal(t, "59.97", resp.Total.StringFixed(2))

	snap, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Lines, 1)
}

func TestService_ProductoDesconocidoOInactivo(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "off"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ActualizarDescuentoYCliente(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	resp, err := svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "p2"})
	require.NoError(t, err)
	lineID := resp.Items[0].ID

	resp, err = svc.SetDiscount(ctx, "u1", decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	assert.Equal(t, "40.00", resp.Total.StringFixed(2))

	resp, err = svc.SetCustomer(ctx, "u1", dto.SetCustomerRequest{CustomerID: "c1", CustomerName: "Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Maria", resp.CustomerName)

	resp, err = svc.UpdateQuantity(ctx, "u1", lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	resp, err = svc.UpdateQuantity(ctx, "u1", "nope", 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestService_CheckoutLimpiaSoloSiConfirma(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	err := svc.Checkout(ctx, "u1", func(*cart.Cart) error { return nil })
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "p1"})
	require.NoError(t, err)

	boom := errors.New("commit falló")
	err = svc.Checkout(ctx, "u1", func(c *cart.Cart) error {
		assert.Len(t, c.SaleLines(), 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	snap, _ := store.Load(ctx, "u1")
	assert.NotNil(t, snap, "el carrito se conserva si la venta falla")

	require.NoError(t, svc.Checkout(ctx, "u1", func(*cart.Cart) error { return nil }))
	snap, _ = store.Load(ctx, "u1")
	assert.Nil(t, snap)
}

func TestService_SesionesIndependientes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", dto.AddCartItemRequest{ProductID: "p1"})
	require.NoError(t, err)

	other, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	require.NoError(t, svc.Clear(ctx, "u1"))
	mine, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, mine.Items)
}
