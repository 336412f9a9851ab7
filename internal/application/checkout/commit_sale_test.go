package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/internal/application/inventory"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/sales"
	"github.com/jhoicas/pdv-api/internal/infrastructure/memory"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

var cashier = checkout.Cashier{UserID: "caixa-1", Email: "caixa@loja.com"}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type receiptMock struct{ mock.Mock }

func (m *receiptMock) Publish(ctx context.Context, sale *entity.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

type fixture struct {
	store *memory.Store
	uc    *checkout.CommitSaleUseCase
	query *checkout.SaleQueryUseCase
}

func newFixture(t *testing.T, attempts int, opts ...checkout.Option) *fixture {
	t.Helper()
	s := memory.New()
	s.SeedProduct(&entity.Product{ID: "p1", Name: "Caderno", Price: d("19.99"), Stock: 10, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "p2", Name: "Mochila", Price: d("49.99"), Stock: 5, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "p3", Name: "Estojo", Price: d("59.99"), Stock: 2, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "last", Name: "Última unidade", Price: d("5.00"), Stock: 1, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "off", Name: "Fora de linha", Price: d("1.00"), Stock: 9, IsActive: false})
	s.SeedCustomer(&entity.Customer{ID: "c1", Name: "Maria Silva", IsActive: true})

	opts = append([]checkout.Option{
		checkout.WithSleep(func(context.Context, time.Duration) error { return nil }),
		checkout.WithNumberGenerator(func() (string, error) { return "ABC12345", nil }),
	}, opts...)
	policy := checkout.RetryPolicy{MaxAttempts: attempts, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Timeout: 5 * time.Second}
	uc := checkout.NewCommitSaleUseCase(memory.NewTxRunner(s), inventory.NewStockUseCase(), policy, logger.Nop(), opts...)
	q := checkout.NewSaleQueryUseCase(memory.NewSaleRepository(s), memory.NewMovementRepository(s), memory.NewFinancialRepository(s))
	return &fixture{store: s, uc: uc, query: q}
}

func threeItems() checkout.CommitInput {
	return checkout.CommitInput{
		Lines: []sales.Line{
			{ProductID: "p1", ProductName: "Caderno", Quantity: 1, UnitPrice: d("19.99")},
			{ProductID: "p2", ProductName: "Mochila", Quantity: 1, UnitPrice: d("49.99")},
			{ProductID: "p3", ProductName: "Estojo", Quantity: 1, UnitPrice: d("59.99")},
		},
		Discount:      d("10.00"),
		PaymentMethod: entity.PaymentPix,
	}
}

func (f *fixture) assertUnchanged(t *testing.T) {
	t.Helper()
	assert.Equal(t, 10, f.store.Product("p1").Stock)
	assert.Equal(t, 5, f.store.Product("p2").Stock)
	assert.Equal(t, 2, f.store.Product("p3").Stock)
	assert.Equal(t, 1, f.store.Product("last").Stock)
	nSales, movs, fins := f.store.Counts()
	assert.Zero(t, nSales, "ventas")
	assert.Zero(t, movs, "movimientos")
	assert.Zero(t, fins, "asientos")
}

func TestCommit_VentaCompleta(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	sale, err := f.uc.Commit(ctx, cashier, threeItems())
	require.NoError(t, err)

	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, "ABC12345", sale.Number)
	assert.Equal(t, entity.SaleStatusConcluida, sale.Status)
	assert.Equal(t, "129.97", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", sale.Discount.StringFixed(2))
	assert.Equal(t, "119.97", sale.Total.StringFixed(2))
	assert.Equal(t, cashier.UserID, sale.CashierID)

	assert.Equal(t, 9, f.store.Product("p1").Stock)
	assert.Equal(t, 4, f.store.Product("p2").Stock)
	assert.Equal(t, 1, f.store.Product("p3").Stock)

	ledger, err := f.query.Ledger(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Consistent)
	require.Len(t, ledger.Movements, 3)
	for _, m := range ledger.Movements {
		assert.Equal(t, entity.MovementTypeSaida, m.Type)
		assert.Equal(t, "Venda", m.Reason)
		assert.Equal(t, 1, m.Quantity)
	}
	require.Len(t, ledger.Transactions, 1)
	fin := ledger.Transactions[0]
	assert.Equal(t, "receita", fin.Type)
	assert.Equal(t, "Vendas", fin.Category)
	assert.Equal(t, "pago", fin.Status)
	assert.Equal(t, "119.97", fin.Amount.StringFixed(2))
	assert.Equal(t, "Venda #ABC12345", fin.Description)

	stored, err := f.query.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 3)
}

func TestCommit_CarritoVacio(t *testing.T) {
	f := newFixture(t, 3)
	in := threeItems()
	in.Lines = nil

	_, err := f.uc.Commit(context.Background(), cashier, in)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	f.assertUnchanged(t)
}

func TestCommit_StockInsuficienteNoDejaEfectos(t *testing.T) {
	f := newFixture(t, 3)
	in := threeItems()
	in.Lines[2].Quantity = 3 // p3 tiene 2

	_, err := f.uc.Commit(context.Background(), cashier, in)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise), "got %v", err)
	assert.Equal(t, "p3", ise.ProductID)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 3, ise.Requested)
	f.assertUnchanged(t)
}

func TestCommit_LineasDuplicadasSeSumanContraElStock(t *testing.T) {
	f := newFixture(t, 3)
	in := checkout.CommitInput{
		Lines: []sales.Line{
			{ProductID: "p3", Quantity: 1, UnitPrice: d("59.99")},
			{ProductID: "p3", Quantity: 2, UnitPrice: d("59.99")},
		},
		PaymentMethod: entity.PaymentDinheiro,
	}

	_, err := f.uc.Commit(context.Background(), cashier, in)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	f.assertUnchanged(t)
}

func TestCommit_ProductoInexistente(t *testing.T) {
	f := newFixture(t, 3)
	in := threeItems()
	in.Lines = append(in.Lines, sales.Line{ProductID: "ghost", Quantity: 1, UnitPrice: d("1")})
	in.Discount = decimal.Zero

	_, err := f.uc.Commit(context.Background(), cashier, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.assertUnchanged(t)
}

func TestCommit_ProductoInactivo(t *testing.T) {
	f := newFixture(t, 3)
	in := checkout.CommitInput{
		Lines:         []sales.Line{{ProductID: "off", Quantity: 1, UnitPrice: d("1")}},
		PaymentMethod: entity.PaymentDinheiro,
	}

	_, err := f.uc.Commit(context.Background(), cashier, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 9, f.store.Product("off").Stock)
}

func TestCommit_Validaciones(t *testing.T) {
	cases := map[string]func(in *checkout.CommitInput){
		"metodo de pago":      func(in *checkout.CommitInput) { in.PaymentMethod = "cheque" },
		"cantidad cero":       func(in *checkout.CommitInput) { in.Lines[0].Quantity = 0 },
		"descuento > total":   func(in *checkout.CommitInput) { in.Discount = d("500") },
		"total no coincide":   func(in *checkout.CommitInput) { x := d("100.00"); in.ExpectedTotal = &x },
		"subtotal no coincide": func(in *checkout.CommitInput) { x := d("1"); in.ExpectedSubtotal = &x },
		"cliente inexistente": func(in *checkout.CommitInput) { in.CustomerID = "nope" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 3, checkout.WithCustomers(memory.NewCustomerRepository(memory.New())))
			in := threeItems()
			mutate(&in)

			_, err := f.uc.Commit(context.Background(), cashier, in)
			var ve *domain.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
			f.assertUnchanged(t)
		})
	}
}

func TestCommit_TotalesEsperadosCoinciden(t *testing.T) {
	f := newFixture(t, 3)
	in := threeItems()
	sub, tot := d("129.97"), d("119.97")
	in.ExpectedSubtotal, in.ExpectedTotal = &sub, &tot

	_, err := f.uc.Commit(context.Background(), cashier, in)
	assert.NoError(t, err)
}

func TestCommit_ClienteCompletaNombre(t *testing.T) {
	s := memory.New()
	s.SeedCustomer(&entity.Customer{ID: "c1", Name: "Maria Silva"})
	f := newFixture(t, 3, checkout.WithCustomers(memory.NewCustomerRepository(s)))
	in := threeItems()
	in.CustomerID = "c1"

	sale, err := f.uc.Commit(context.Background(), cashier, in)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", sale.CustomerName)
}

func TestCommit_SinCajero(t *testing.T) {
	f := newFixture(t, 3)
	_, err := f.uc.Commit(context.Background(), checkout.Cashier{}, threeItems())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCommit_ConcurrenciaUltimaUnidad(t *testing.T) {
	f := newFixture(t, 5)
	in := checkout.CommitInput{
		Lines:         []sales.Line{{ProductID: "last", Quantity: 1, UnitPrice: d("5.00")}},
		PaymentMethod: entity.PaymentDinheiro,
	}

	const buyers = 2
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Commit(context.Background(), cashier, in)
		}(i)
	}
	close(start)
	wg.Wait()

	ok, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.store.Product("last").Stock)
	nSales, movs, fins := f.store.Counts()
	assert.Equal(t, 1, nSales)
	assert.Equal(t, 1, movs)
	assert.Equal(t, 1, fins)
}

func TestCommit_ReintentaConflicto(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	fired := false
	f.store.SetBeforeCommit(func() {
		if fired {
			return
		}
		fired = true
		_, err := memory.NewProductRepository(f.store).DecrementStock(ctx, "p1", 4)
		require.NoError(t, err)
	})

	in := checkout.CommitInput{
		Lines:         []sales.Line{{ProductID: "p1", Quantity: 2, UnitPrice: d("19.99")}},
		PaymentMethod: entity.PaymentCartaoDebito,
	}
	sale, err := f.uc.Commit(ctx, cashier, in)
	require.NoError(t, err)

	assert.True(t, fired)
	assert.Equal(t, 4, f.store.Product("p1").Stock, "10 - 4 externo - 2 venta")
	ledger, err := f.query.Ledger(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Consistent)
}

func TestCommit_AlmacenNoDisponible(t *testing.T) {
	f := newFixture(t, 3)
	f.store.FailNext(domain.ErrStoreUnavailable, domain.ErrStoreUnavailable, domain.ErrStoreUnavailable)

	_, err := f.uc.Commit(context.Background(), cashier, threeItems())

	var cu *domain.CommitUnavailableError
	require.True(t, errors.As(err, &cu), "got %v", err)
	assert.Equal(t, 3, cu.Attempts)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	f.assertUnchanged(t)

	// el carrito se puede reintentar cuando el almacén vuelve
	_, err = f.uc.Commit(context.Background(), cashier, threeItems())
	assert.NoError(t, err)
}

func TestCommit_ConfirmacionPerdidaNoDuplicaVenta(t *testing.T) {
	f := newFixture(t, 3)
	// el commit se aplica pero la respuesta no llega al cliente
	f.store.FailAfterCommit(fmt.Errorf("%w: conexión cortada", domain.ErrStoreUnavailable))

	sale, err := f.uc.Commit(context.Background(), cashier, threeItems())
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)

	nSales, movs, fins := f.store.Counts()
	assert.Equal(t, 1, nSales)
	assert.Equal(t, 3, movs)
	assert.Equal(t, 1, fins)
	assert.Equal(t, 9, f.store.Product("p1").Stock)
	assert.Equal(t, 4, f.store.Product("p2").Stock)
	assert.Equal(t, 1, f.store.Product("p3").Stock)

	ledger, err := f.query.Ledger(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Consistent)
}

func TestCommit_BreakerAbierto(t *testing.T) {
	f := newFixture(t, 5)
	for i := 0; i < 5; i++ {
		f.store.FailNext(domain.ErrStoreUnavailable)
	}

	_, err := f.uc.Commit(context.Background(), cashier, threeItems())
	require.ErrorIs(t, err, domain.ErrCommitUnavailable)

	_, err = f.uc.Commit(context.Background(), cashier, threeItems())
	var cu *domain.CommitUnavailableError
	require.True(t, errors.As(err, &cu))
	assert.Equal(t, 1, cu.Attempts)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	f.assertUnchanged(t)
}

func TestCommit_TimeoutEsCommitUnavailable(t *testing.T) {
	f := newFixture(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Commit(ctx, cashier, threeItems())
	assert.ErrorIs(t, err, domain.ErrCommitUnavailable)
	f.assertUnchanged(t)
}

func TestCommit_PublicaComprobante(t *testing.T) {
	rm := &receiptMock{}
	rm.On("Publish", mock.Anything, mock.MatchedBy(func(s *entity.Sale) bool {
		return s.Total.Equal(d("119.97")) && len(s.Items) == 3
	})).Return(errors.New("pdf roto")).Once()
	f := newFixture(t, 3, checkout.WithReceipts(rm))

	sale, err := f.uc.Commit(context.Background(), cashier, threeItems())
	require.NoError(t, err, "el fallo del comprobante no afecta la venta")
	assert.NotNil(t, sale)
	rm.AssertExpectations(t)
}

func TestCommit_SinComprobanteSiFalla(t *testing.T) {
	rm := &receiptMock{}
	f := newFixture(t, 3, checkout.WithReceipts(rm))
	in := threeItems()
	in.Lines[0].Quantity = 99

	_, err := f.uc.Commit(context.Background(), cashier, in)
	require.Error(t, err)
	rm.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestListSalesYFinanciero(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	_, err := f.uc.Commit(ctx, cashier, threeItems())
	require.NoError(t, err)
	in := threeItems()
	in.PaymentMethod = entity.PaymentDinheiro
	in.Discount = decimal.Zero
	_, err = f.uc.Commit(ctx, cashier, in)
	require.NoError(t, err)

	all, err := f.query.ListSales(ctx, dto.SaleListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	pix, err := f.query.ListSales(ctx, dto.SaleListRequest{PaymentMethod: entity.PaymentPix})
	require.NoError(t, err)
	assert.Len(t, pix.Items, 1)

	fin, err := financial.NewLedgerUseCase(memory.NewFinancialRepository(f.store), logger.Nop()).
		List(ctx, dto.FinancialListRequest{Type: "receita"})
	require.NoError(t, err)
	assert.Len(t, fin.Items, 2)
	assert.Equal(t, "249.94", fin.TotalReceita.StringFixed(2))

	_, err = f.query.ListSales(ctx, dto.SaleListRequest{From: "2024-13-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetSale_NoExiste(t *testing.T) {
	f := newFixture(t, 3)
	_, err := f.query.GetSale(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
