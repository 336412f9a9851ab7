package receipt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pdv-api/internal/application/receipt"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/infrastructure/memory"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

type rendererMock struct{ mock.Mock }

func (m *rendererMock) RenderSaleReceipt(ctx context.Context, sale *entity.Sale) ([]byte, error) {
	args := m.Called(ctx, sale)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mapCache map[string][]byte

func (c mapCache) Get(_ context.Context, id string) ([]byte, error) { return c[id], nil }
func (c mapCache) Put(_ context.Context, id string, pdf []byte) error {
	c[id] = pdf
	return nil
}

func newStoreWithSale(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	require.NoError(t, memory.NewSaleRepository(s).Create(context.Background(), &entity.Sale{ID: "v1", Number: "ABC12345"}))
	return s
}

func TestPublish_CacheaElPDF(t *testing.T) {
	r := &rendererMock{}
	r.On("RenderSaleReceipt", mock.Anything, mock.Anything).Return([]byte("%PDF-x"), nil).Once()
	cache := mapCache{}
	svc := receipt.NewService(r, cache, memory.NewSaleRepository(memory.New()), logger.Nop())

	require.NoError(t, svc.Publish(context.Background(), &entity.Sale{ID: "v1"}))
	assert.Equal(t, []byte("%PDF-x"), cache["v1"])
	r.AssertExpectations(t)
}

func TestGet_UsaCacheAntesDeRenderizar(t *testing.T) {
	r := &rendererMock{}
	svc := receipt.NewService(r, mapCache{"v1": []byte("cached")}, memory.NewSaleRepository(newStoreWithSale(t)), logger.Nop())

	pdf, name, err := svc.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), pdf)
	assert.Equal(t, "venda_ABC12345.pdf", name)
	r.AssertNotCalled(t, "RenderSaleReceipt", mock.Anything, mock.Anything)
}

func TestGet_SinCacheRenderiza(t *testing.T) {
	r := &rendererMock{}
	r.On("RenderSaleReceipt", mock.Anything, mock.Anything).Return([]byte("%PDF-y"), nil).Once()
	svc := receipt.NewService(r, nil, memory.NewSaleRepository(newStoreWithSale(t)), logger.Nop())

	pdf, _, err := svc.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-y"), pdf)
}

func TestGet_VentaInexistente(t *testing.T) {
	svc := receipt.NewService(&rendererMock{}, nil, memory.NewSaleRepository(memory.New()), logger.Nop())

	_, _, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublish_ErrorDeRender(t *testing.T) {
	r := &rendererMock{}
	r.On("RenderSaleReceipt", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	svc := receipt.NewService(r, nil, memory.NewSaleRepository(memory.New()), logger.Nop())

	assert.Error(t, svc.Publish(context.Background(), &entity.Sale{ID: "v1"}))
}
