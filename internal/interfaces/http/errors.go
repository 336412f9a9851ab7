package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pdv-api/internal/application/dto"
	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// insufficientStockDetails detalle de 409 para que el PDV muestre el faltante.
type insufficientStockDetails struct {
	ProductID string `json:"productId"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// writeError traduce errores de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		ve  *domain.ValidationError
		ise *domain.InsufficientStockError
		cue *domain.CommitUnavailableError
	)
	switch {
	case errors.As(err, &ise):
		resp := dto.NewError("INSUFFICIENT_STOCK", ise.Error())
		resp.Details = insufficientStockDetails{ProductID: ise.ProductID, Available: ise.Available, Requested: ise.Requested}
		return c.Status(fiber.StatusConflict).JSON(resp)
	case errors.As(err, &ve):
		resp := dto.NewError("VALIDATION", ve.Error())
		if ve.Field != "" {
			resp.Details = fiber.Map{"field": ve.Field}
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.Is(err, domain.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("EMPTY_CART", err.Error()))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("VALIDATION", err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.NewError("NOT_FOUND", err.Error()))
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError("UNAUTHORIZED", "credenciales inválidas"))
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.NewError("FORBIDDEN", "cuenta inactiva o suspendida"))
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.NewError("DUPLICATE", err.Error()))
	case errors.As(err, &cue):
		resp := dto.NewError("COMMIT_UNAVAILABLE", "no fue posible confirmar la venta, intente nuevamente")
		resp.Details = fiber.Map{"attempts": cue.Attempts}
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.NewError("CONFLICT", "operación concurrente en curso, reintente"))
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.NewError("STORE_UNAVAILABLE", "almacén no disponible, intente más tarde"))
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("INTERNAL", "error interno"))
}
