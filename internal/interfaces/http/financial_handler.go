package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/application/financial"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// FinancialHandler libro financiero (admin/gerente).
type FinancialHandler struct {
	ledger *financial.LedgerUseCase
	log    *logger.Logger
}

// NewFinancialHandler construye el handler.
func NewFinancialHandler(ledger *financial.LedgerUseCase, log *logger.Logger) *FinancialHandler {
	return &FinancialHandler{ledger: ledger, log: log}
}

// List godoc
// @Summary      Transacciones financieras
// @Tags         financial
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "receita | despesa"
// @Param        status  query  string  false  "pendente | pago | cancelado"
// @Param        from    query  string  false  "desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.FinancialListResponse
// @Router       /api/financial/transactions [get]
func (h *FinancialHandler) List(c *fiber.Ctx) error {
	var in dto.FinancialListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.ledger.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Asiento manual (receita o despesa)
// @Tags         financial
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFinancialRequest  true  "asiento"
// @Success      201  {object}  dto.FinancialTransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/financial/transactions [post]
func (h *FinancialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFinancialRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.Record(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
