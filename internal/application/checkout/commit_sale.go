package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/domain/repository"
	"github.com/jhoicas/pdv-api/internal/domain/sales"
	"github.com/jhoicas/pdv-api/pkg/logger"
	"github.com/jhoicas/pdv-api/pkg/money"
)

const receiptAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NanoidNumbers genera números de recibo de 8 caracteres sin letras ambiguas.
func NanoidNumbers() (string, error) {
	return gonanoid.Generate(receiptAlphabet, 8)
}

// Cashier operador autenticado que confirma la venta.
type Cashier struct {
	UserID string
	Email  string
}

// CommitInput datos de la venta a confirmar.
// ExpectedSubtotal/ExpectedTotal son los valores que mostró el cliente; si vienen deben coincidir.
type CommitInput struct {
	Lines            []sales.Line
	CustomerID       string
	CustomerName     string
	Discount         decimal.Decimal
	PaymentMethod    string
	Notes            string
	ExpectedSubtotal *decimal.Decimal
	ExpectedTotal    *decimal.Decimal
}

// CommitSaleUseCase confirma una venta: stock, venta, movimientos e ingreso en una sola unidad atómica.
type CommitSaleUseCase struct {
	txRunner     TxRunner
	stockOut     StockOut
	customerRepo repository.CustomerRepository
	receipts     ReceiptPublisher
	numbers      NumberGenerator
	retry        *retrier
	timeout      time.Duration
	now          func() time.Time
	log          *logger.Logger
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*CommitSaleUseCase)

// WithReceipts publica el comprobante tras cada venta confirmada.
func WithReceipts(p ReceiptPublisher) Option {
	return func(uc *CommitSaleUseCase) { uc.receipts = p }
}

// WithCustomers valida customerId contra el repositorio de clientes.
func WithCustomers(r repository.CustomerRepository) Option {
	return func(uc *CommitSaleUseCase) { uc.customerRepo = r }
}

// WithNumberGenerator reemplaza el generador de números de recibo.
func WithNumberGenerator(g NumberGenerator) Option {
	return func(uc *CommitSaleUseCase) { uc.numbers = g }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *CommitSaleUseCase) { uc.now = now }
}

// withSleep reemplaza la espera entre reintentos (tests).
func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(uc *CommitSaleUseCase) { uc.retry.sleep = sleep }
}

// NewCommitSaleUseCase construye el caso de uso.
func NewCommitSaleUseCase(txRunner TxRunner, stockOut StockOut, policy RetryPolicy, log *logger.Logger, opts ...Option) *CommitSaleUseCase {
	log = log.Component("checkout")
	uc := &CommitSaleUseCase{
		txRunner: txRunner,
		stockOut: stockOut,
		numbers:  NanoidNumbers,
		retry:    newRetrier(policy, log),
		timeout:  policy.Timeout,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Commit valida la entrada, calcula totales y confirma la venta.
// Errores: domain.ErrEmptyCart, *domain.ValidationError, *domain.InsufficientStockError,
// domain.ErrNotFound (producto inexistente) o *domain.CommitUnavailableError.
func (uc *CommitSaleUseCase) Commit(ctx context.Context, cashier Cashier, in CommitInput) (*entity.Sale, error) {
	if cashier.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.NewValidationError("paymentMethod", "método de pago inválido")
	}
	totals, err := sales.ComputeTotals(in.Lines, in.Discount)
	if err != nil {
		return nil, err
	}
	if in.ExpectedSubtotal != nil && !money.Round(*in.ExpectedSubtotal).Equal(totals.Subtotal) {
		return nil, domain.NewValidationError("subtotal", fmt.Sprintf("no coincide con el calculado (%s)", totals.Subtotal.StringFixed(2)))
	}
	if in.ExpectedTotal != nil && !money.Round(*in.ExpectedTotal).Equal(totals.Total) {
		return nil, domain.NewValidationError("total", fmt.Sprintf("no coincide con el calculado (%s)", totals.Total.StringFixed(2)))
	}

	customerName := in.CustomerName
	if in.CustomerID != "" && uc.customerRepo != nil {
		c, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.NewValidationError("customerId", "cliente no encontrado")
		}
		if customerName == "" {
			customerName = c.Name
		}
	}

	number, err := uc.numbers()
	if err != nil {
		return nil, fmt.Errorf("checkout: número de recibo: %w", err)
	}
	now := uc.now().UTC()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		Number:        number,
		CustomerID:    in.CustomerID,
		CustomerName:  customerName,
		Items:         totals.Items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: in.PaymentMethod,
		Status:        entity.SaleStatusConcluida,
		Notes:         in.Notes,
		CashierID:     cashier.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     cashier.UserID,
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	tries := 0
	attempts, err := uc.retry.Do(ctx, func(ctx context.Context) error {
		tries++
		return uc.commitOnce(ctx, sale, tries > 1)
	})
	if errors.Is(err, errAlreadyCommitted) {
		// un intento previo confirmó la venta pero su respuesta se perdió
		uc.log.Warn().Str("sale_id", sale.ID).Int("attempts", attempts).Msg("SALE_COMMIT_ACK_LOST")
		err = nil
	}
	if err != nil {
		uc.log.Warn().Err(err).
			Str("cashier", cashier.UserID).
			Int("items", len(sale.Items)).
			Int("attempts", attempts).
			Msg("SALE_CREATE_FAILED")
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("number", sale.Number).
		Str("total", sale.Total.StringFixed(2)).
		Int("items", len(sale.Items)).
		Str("cashier", cashier.UserID).
		Str("cashier_email", cashier.Email).
		Int("attempts", attempts).
		Msg("SALE_CREATED")

	if uc.receipts != nil {
		if err := uc.receipts.Publish(context.WithoutCancel(ctx), sale); err != nil {
			uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("no se pudo generar el comprobante")
		}
	}
	return sale, nil
}

// errAlreadyCommitted la venta de este commit ya existe: la escribió un intento anterior.
var errAlreadyCommitted = errors.New("checkout: venta ya confirmada")

// commitOnce es un intento completo: bloquea productos en orden de id, verifica stock,
// crea la venta, descuenta stock con su movimiento por ítem y registra el ingreso.
// En un reintento primero busca sale.ID, porque el intento anterior pudo haber confirmado.
func (uc *CommitSaleUseCase) commitOnce(ctx context.Context, sale *entity.Sale, retrying bool) error {
	need := make(map[string]int, len(sale.Items))
	ids := make([]string, 0, len(sale.Items))
	for _, it := range sale.Items {
		if _, ok := need[it.ProductID]; !ok {
			ids = append(ids, it.ProductID)
		}
		need[it.ProductID] += it.Quantity
	}
	// orden fijo de bloqueo para evitar deadlocks entre ventas concurrentes
	sort.Strings(ids)

	err := uc.txRunner.RunCheckout(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
		finRepo repository.FinancialTransactionRepository,
	) error {
		if retrying {
			prev, err := saleRepo.GetByID(ctx, sale.ID)
			if err != nil {
				return err
			}
			if prev != nil {
				return errAlreadyCommitted
			}
		}
		for _, id := range ids {
			p, err := productRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
			}
			if !p.IsActive {
				return domain.NewValidationError("productId", fmt.Sprintf("producto %s inactivo", id))
			}
			if p.Stock < need[id] {
				return &domain.InsufficientStockError{ProductID: id, Available: p.Stock, Requested: need[id]}
			}
		}

		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		movements, fin := sales.Entries(sale, sale.CreatedAt, func() string { return uuid.New().String() })
		for _, m := range movements {
			if err := uc.stockOut.RegisterSaleOutInTx(ctx, productRepo, movRepo, m); err != nil {
				return err
			}
		}
		return finRepo.Create(ctx, fin)
	})
	if retrying && errors.Is(err, domain.ErrDuplicate) {
		return errAlreadyCommitted
	}
	return err
}
