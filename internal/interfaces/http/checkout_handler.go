package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pos/internal/application/checkout"
	"github.com/tu-usuario/farmacia-pos/internal/application/dto"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
)

// CheckoutHandler maneja las peticiones HTTP de la caja: revalidación de
// carrito y liquidación de venta.
type CheckoutHandler struct {
	guard      checkout.Revalidator
	settlement *checkout.SettlementUseCase
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(guard checkout.Revalidator, settlement *checkout.SettlementUseCase) *CheckoutHandler {
	return &CheckoutHandler{guard: guard, settlement: settlement}
}

// ValidateCart godoc
// @Summary      Revalidar carrito antes del cobro
// @Description  Re-lee el estado del inventario y reporta las líneas conflictivas. No reserva stock.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateCartRequest  true  "líneas del carrito"
// @Success      200   {object}  dto.ValidateCartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/checkout/validate [post]
func (h *CheckoutHandler) ValidateCart(c *fiber.Ctx) error {
	var in dto.ValidateCartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.guard.Revalidate(c.Context(), toCartLines(in.Lines))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "carrito vacío o inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ValidateCartResponse{Valid: report.Valid, Issues: report.Issues})
}

// Settle godoc
// @Summary      Liquidar venta
// @Description  Punto único de venta: revalida, asigna lotes por FEFO, cobra y persiste la venta. Todo-o-nada.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettleRequest  true  "líneas, descuento, pago y método"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      402   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/checkout/settle [post]
func (h *CheckoutHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	sale, err := h.settlement.Settle(c.Context(), checkout.SettleInput{
		Lines:         toCartLines(in.Lines),
		CustomerRef:   in.CustomerRef,
		Discount:      in.Discount,
		AmountPaid:    in.AmountPaid,
		PaymentMethod: in.PaymentMethod,
		ActorID:       actorID(c),
	})
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Code: "CART_INVALID", Message: "el carrito no pasó la revalidación", Issues: verr.Issues,
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrPaymentInsufficient) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{Code: "PAYMENT_INSUFFICIENT", Message: "el pago no cubre el total"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale))
}

func toCartLines(in []dto.CartLineRequest) []checkout.CartLine {
	lines := make([]checkout.CartLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, checkout.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return lines
}
