package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pdv-api/internal/application/auth"
	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/internal/application/inventory"
	"github.com/jhoicas/pdv-api/internal/application/usecase"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/pdv-api/internal/interfaces/http"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memory.New()
	s.SeedProduct(&entity.Product{ID: "p1", Name: "Caderno", SKU: "CAD", Price: decimal.RequireFromString("19.99"), Stock: 10, MinStock: 2, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "p2", Name: "Mochila", SKU: "MOC", Price: decimal.RequireFromString("49.99"), Stock: 5, MinStock: 1, IsActive: true})
	s.SeedProduct(&entity.Product{ID: "p3", Name: "Estojo", SKU: "EST", Price: decimal.RequireFromString("59.99"), Stock: 2, MinStock: 3, IsActive: true})

	log := logger.Nop()
	authUC := auth.NewAuthUseCase(memory.NewUserRepository(s), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer})
	_, _, err := authUC.EnsureUser(context.Background(), "caixa@loja.com", "senha-segura", "Caixa 1", entity.RoleVendedor)
	require.NoError(t, err)
	_, _, err = authUC.EnsureUser(context.Background(), "gerente@loja.com", "senha-gerente", "Gerente", entity.RoleGerente)
	require.NoError(t, err)

	policy := checkout.RetryPolicy{MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Timeout: 5 * time.Second}
	commit := checkout.NewCommitSaleUseCase(memory.NewTxRunner(s), inventory.NewStockUseCase(), policy, log,
		checkout.WithCustomers(memory.NewCustomerRepository(s)))
	query := checkout.NewSaleQueryUseCase(memory.NewSaleRepository(s), memory.NewMovementRepository(s), memory.NewFinancialRepository(s))
	products := memory.NewProductRepository(s)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  usecase.NewProductUseCase(products),
		CommitSale: commit,
		SaleQuery:  query,
		Financial:  financial.NewLedgerUseCase(memory.NewFinancialRepository(s), log),
		Carts:      cart.NewService(memory.NewCartStore(time.Hour), memory.NewLocker(), products, log),
		JWTSecret:  testJWTSecret,
		Logger:     log,
	})
	return &apiFixture{app: app, store: s}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	return f.loginAs(t, "caixa@loja.com", "senha-segura")
}

func (f *apiFixture) loginAs(t *testing.T, email, password string) string {
	t.Helper()
	resp, body := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return "Bearer " + body["token"].(string)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caixa@loja.com", Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestCreateSale_Exito(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "productName": "Caderno", "quantity": 1, "unitPrice": "19.99", "total": "19.99"},
			{"productId": "p2", "productName": "Mochila", "quantity": 1, "unitPrice": "49.99", "total": "49.99"},
			{"productId": "p3", "productName": "Estojo", "quantity": 1, "unitPrice": "59.99", "total": "59.99"},
		},
		"subtotal":      "129.97",
		"discount":      "10.00",
		"total":         "119.97",
		"paymentMethod": "pix",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "119.97", body["total"])
	assert.Equal(t, "concluida", body["status"])
	assert.Equal(t, 1, f.store.Product("p3").Stock)

	saleID := body["id"].(string)
	resp, got := f.call(t, http.MethodGet, "/api/sales/"+saleID, tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, saleID, got["id"])
}

func TestCreateSale_StockInsuficiente409(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items":         []map[string]any{{"productId": "p3", "quantity": 3, "unitPrice": "59.99"}},
		"discount":      "0",
		"paymentMethod": "dinheiro",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "p3", details["productId"])
	assert.EqualValues(t, 2, details["available"])
	assert.EqualValues(t, 3, details["requested"])
	assert.Equal(t, 2, f.store.Product("p3").Stock)
}

func TestCreateSale_CarritoVacio400(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items":         []map[string]any{},
		"discount":      "0",
		"paymentMethod": "pix",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", body["code"])
}

func TestCreateSale_ValidacionDePayload(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items":         []map[string]any{{"productId": "p1", "quantity": 1, "unitPrice": "19.99"}},
		"discount":      "0",
		"paymentMethod": "cheque",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items":         []map[string]any{{"productId": "p1", "quantity": 2, "unitPrice": "19.99", "total": "19.99"}},
		"discount":      "0",
		"paymentMethod": "pix",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestCreateSale_ProductoInexistente404(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, _ := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items":         []map[string]any{{"productId": "nope", "quantity": 1, "unitPrice": "1.00"}},
		"discount":      "0",
		"paymentMethod": "pix",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSale_SinToken401(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodPost, "/api/sales", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartCheckout_Flujo(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddCartItemRequest{ProductID: "p1", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	resp, body = f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddCartItemRequest{ProductID: "p2"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "89.97", body["subtotal"])

	resp, body = f.call(t, http.MethodPut, "/api/cart/discount", tok, map[string]any{"discount": "9.97"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "80", body["total"])

	resp, body = f.call(t, http.MethodPost, "/api/cart/checkout", tok, dto.CheckoutRequest{PaymentMethod: "cartao_debito"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "80", body["total"])
	assert.Equal(t, 8, f.store.Product("p1").Stock)

	resp, body = f.call(t, http.MethodGet, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])
}

func TestCartCheckout_FallaConservaCarrito(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, _ := f.call(t, http.MethodPost, "/api/cart/items", tok, dto.AddCartItemRequest{ProductID: "p3", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// otra caja se lleva el stock antes del checkout
	_, err := memory.NewProductRepository(f.store).DecrementStock(context.Background(), "p3", 1)
	require.NoError(t, err)

	resp, body := f.call(t, http.MethodPost, "/api/cart/checkout", tok, dto.CheckoutRequest{PaymentMethod: "pix"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	_, body = f.call(t, http.MethodGet, "/api/cart", tok, nil)
	assert.Len(t, body["items"], 1)
}

func TestFinancial_VendedorNoAutorizado(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodGet, "/api/financial/transactions", tok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestProducts_LowStock(t *testing.T) {
	f := newAPI(t)
	tok := f.login(t)

	resp, body := f.call(t, http.MethodGet, "/api/products/low-stock", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "p3", items[0].(map[string]any)["id"])
}

func TestSales_ListadoPorRolYLedger(t *testing.T) {
	f := newAPI(t)
	caixa := f.login(t)
	gerente := f.loginAs(t, "gerente@loja.com", "senha-gerente")

	sale := func(tok string) string {
		resp, body := f.call(t, http.MethodPost, "/api/sales", tok, map[string]any{
			"items":         []map[string]any{{"productId": "p1", "quantity": 2, "unitPrice": "19.99"}},
			"discount":      "0",
			"paymentMethod": "dinheiro",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		return body["id"].(string)
	}
	own := sale(caixa)
	sale(gerente)

	// vendedor solo ve sus ventas
	resp, body := f.call(t, http.MethodGet, "/api/sales", caixa, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, own, items[0].(map[string]any)["id"])

	resp, body = f.call(t, http.MethodGet, "/api/sales", gerente, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"].([]any), 2)

	resp, _ = f.call(t, http.MethodGet, "/api/sales/"+own+"/ledger", caixa, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = f.call(t, http.MethodGet, "/api/sales/"+own+"/ledger", gerente, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, own, body["saleId"])
	assert.Equal(t, true, body["consistent"])
	assert.Len(t, body["movements"].([]any), 1)
	assert.Len(t, body["transactions"].([]any), 1)
	assert.Equal(t, "39.98", body["transactions"].([]any)[0].(map[string]any)["amount"])
}

func TestFinancial_AsientoManual(t *testing.T) {
	f := newAPI(t)
	gerente := f.loginAs(t, "gerente@loja.com", "senha-gerente")
	entry := map[string]any{
		"type": "despesa", "category": "Aluguel", "description": "Aluguel da loja",
		"amount": "1200.50", "date": "2024-03-05", "paymentMethod": "boleto",
	}

	resp, body := f.call(t, http.MethodPost, "/api/financial/transactions", f.login(t), entry)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, body = f.call(t, http.MethodPost, "/api/financial/transactions", gerente, entry)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "despesa", body["type"])
	assert.Equal(t, "pago", body["status"])
	assert.Equal(t, "1200.5", body["amount"])

	resp, body = f.call(t, http.MethodPost, "/api/financial/transactions", gerente, map[string]any{
		"type": "transferencia", "category": "X", "description": "Y", "amount": "10",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = f.call(t, http.MethodGet, "/api/financial/transactions?type=despesa", gerente, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"].([]any), 1)
	assert.Equal(t, "1200.5", body["totalDespesa"])
}
