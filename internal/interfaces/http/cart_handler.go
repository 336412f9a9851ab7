package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pdv-api/internal/application/cart"
	"github.com/jhoicas/pdv-api/internal/application/checkout"
	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// HeaderTerminalID identifica la caja cuando un mismo operador usa varias.
const HeaderTerminalID = "X-Terminal-ID"

// CartHandler carrito de sesión del PDV (protegido).
type CartHandler struct {
	carts  *cart.Service
	commit *checkout.CommitSaleUseCase
	log    *logger.Logger
}

// NewCartHandler construye el handler.
func NewCartHandler(carts *cart.Service, commit *checkout.CommitSaleUseCase, log *logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, commit: commit, log: log}
}

// sessionID operador + terminal opcional.
func sessionID(c *fiber.Ctx) string {
	sid := GetUserID(c)
	if t := c.Get(HeaderTerminalID); t != "" {
		sid += ":" + t
	}
	return sid
}

// Get godoc
// @Summary      Carrito actual
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.carts.Get(c.UserContext(), sessionID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCartItemRequest  true  "producto y cantidad"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.carts.AddItem(c.UserContext(), sessionID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateItem godoc
// @Summary      Cambiar cantidad de una línea
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                     true  "línea"
// @Param        body    body  dto.UpdateCartItemRequest  true  "cantidad"
// @Success      200     {object}  dto.CartResponse
// @Router       /api/cart/items/{lineId} [patch]
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.carts.UpdateQuantity(c.UserContext(), sessionID(c), c.Params("lineId"), in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar línea del carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        lineId  path  string  true  "línea"
// @Success      200     {object}  dto.CartResponse
// @Router       /api/cart/items/{lineId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.carts.RemoveItem(c.UserContext(), sessionID(c), c.Params("lineId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SetDiscount godoc
// @Summary      Fijar descuento
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetDiscountRequest  true  "descuento"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cart/discount [put]
func (h *CartHandler) SetDiscount(c *fiber.Ctx) error {
	var in dto.SetDiscountRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.carts.SetDiscount(c.UserContext(), sessionID(c), in.Discount)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SetCustomer godoc
// @Summary      Seleccionar cliente
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetCustomerRequest  true  "cliente"
// @Success      200   {object}  dto.CartResponse
// @Router       /api/cart/customer [put]
func (h *CartHandler) SetCustomer(c *fiber.Ctx) error {
	var in dto.SetCustomerRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.carts.SetCustomer(c.UserContext(), sessionID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         cart
// @Security     Bearer
// @Success      204
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.UserContext(), sessionID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar el carrito como venta
// @Description  El carrito se conserva si la venta falla.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "método de pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	ctx := c.UserContext()
	var sale *entity.Sale
	err := h.carts.Checkout(ctx, sessionID(c), func(cc *cart.Cart) error {
		customerID, customerName := cc.Customer()
		var err error
		sale, err = h.commit.Commit(ctx, cashierFrom(c), checkout.CommitInput{
			Lines:         cc.SaleLines(),
			CustomerID:    customerID,
			CustomerName:  customerName,
			Discount:      cc.Discount(),
			PaymentMethod: in.PaymentMethod,
			Notes:         in.Notes,
		})
		return err
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(checkout.ToSaleResponse(sale))
}
