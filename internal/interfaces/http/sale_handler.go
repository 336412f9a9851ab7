package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/application/receipt"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/internal/domain/sales"
	"github.com/jhoicas/pdv-api/pkg/logger"
	"github.com/jhoicas/pdv-api/pkg/money"
)

// SaleHandler confirmación y consulta de ventas (protegido).
type SaleHandler struct {
	commit   *checkout.CommitSaleUseCase
	query    *checkout.SaleQueryUseCase
	receipts *receipt.Service
	log      *logger.Logger
}

// NewSaleHandler construye el handler. receipts puede ser nil (sin comprobantes).
func NewSaleHandler(commit *checkout.CommitSaleUseCase, query *checkout.SaleQueryUseCase, receipts *receipt.Service, log *logger.Logger) *SaleHandler {
	return &SaleHandler{commit: commit, query: query, receipts: receipts, log: log}
}

// Create godoc
// @Summary      Confirmar venta
// @Description  Descuenta stock, registra la venta, los movimientos de salida y el ingreso en una única operación atómica.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	input, err := toCommitInput(in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	sale, err := h.commit.Commit(c.UserContext(), cashierFrom(c), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(checkout.ToSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from           query  string  false  "desde (YYYY-MM-DD)"
// @Param        to             query  string  false  "hasta (YYYY-MM-DD)"
// @Param        paymentMethod  query  string  false  "método de pago"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	// Un vendedor solo ve sus propias ventas.
	if GetRole(c) == "vendedor" {
		in.CashierID = GetUserID(c)
	}
	out, err := h.query.ListSales(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Asientos de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleLedgerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ledger [get]
func (h *SaleHandler) Ledger(c *fiber.Ctx) error {
	out, err := h.query.Ledger(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	if h.receipts == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.NewError("NOT_FOUND", "comprobantes deshabilitados"))
	}
	pdf, filename, err := h.receipts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdf)
}

func cashierFrom(c *fiber.Ctx) checkout.Cashier {
	return checkout.Cashier{UserID: GetUserID(c), Email: GetEmail(c)}
}

// toCommitInput valida el total de cada línea enviado por el cliente y arma la entrada del commit.
func toCommitInput(in dto.CreateSaleRequest) (checkout.CommitInput, error) {
	lines := make([]sales.Line, 0, len(in.Items))
	for i, it := range in.Items {
		if it.Total != nil && !money.Round(*it.Total).Equal(money.LineTotal(it.Quantity, it.UnitPrice)) {
			return checkout.CommitInput{}, domain.NewValidationError(
				fmt.Sprintf("items[%d].total", i),
				fmt.Sprintf("no coincide con quantity × unitPrice (%s)", money.LineTotal(it.Quantity, it.UnitPrice).StringFixed(2)),
			)
		}
		lines = append(lines, sales.Line{
			ProductID:   strings.TrimSpace(it.ProductID),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return checkout.CommitInput{
		Lines:            lines,
		CustomerID:       in.CustomerID,
		CustomerName:     in.CustomerName,
		Discount:         in.Discount,
		PaymentMethod:    in.PaymentMethod,
		Notes:            in.Notes,
		ExpectedSubtotal: in.Subtotal,
		ExpectedTotal:    in.Total,
	}, nil
}
