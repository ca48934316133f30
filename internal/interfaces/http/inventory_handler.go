package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pos/internal/application/dto"
	"github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain"
	"github.com/tu-usuario/farmacia-pos/internal/domain/entity"
)

// Sweeper contrato del barrido de cuarentena visto desde HTTP.
type Sweeper interface {
	Sweep(ctx context.Context, asOf time.Time) ([]string, error)
}

// InventoryHandler maneja las peticiones HTTP del inventario por lotes.
type InventoryHandler struct {
	receive *inventory.ReceiveStockUseCase
	queries *inventory.QueryUseCase
	oracle  *inventory.PriceOracle
	sweeper Sweeper
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	receive *inventory.ReceiveStockUseCase,
	queries *inventory.QueryUseCase,
	oracle *inventory.PriceOracle,
	sweeper Sweeper,
) *InventoryHandler {
	return &InventoryHandler{receive: receive, queries: queries, oracle: oracle, sweeper: sweeper}
}

// ReceiveStock godoc
// @Summary      Registrar recepción de lote
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "product_id, batch_number, quantity, expiry_date, unit_cost, unit_price, supplier_name"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.receive.Receive(c.Context(), inventory.ReceiveInput{
		ProductID:    in.ProductID,
		BatchNumber:  in.BatchNumber,
		Quantity:     in.Quantity,
		ExpiryDate:   in.ExpiryDate,
		UnitCost:     in.UnitCost,
		UnitPrice:    in.UnitPrice,
		SupplierName: in.SupplierName,
		ActorID:      actorID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "número de lote ya registrado para este producto"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBatchResponse(batch))
}

// ListBatches godoc
// @Summary      Listar lotes de un producto
// @Tags         inventory
// @Produce      json
// @Param        id                    path   string  true   "ID del producto (UUID)"
// @Param        expiring_within_days  query  int     false  "Solo lotes que vencen dentro de N días"
// @Success      200  {array}   dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	days := c.QueryInt("expiring_within_days", 0)
	batches, err := h.queries.ListBatches(c.Context(), c.Params("id"), days)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, dto.ToBatchResponse(b))
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Stock asignable vigente de un producto
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del producto (UUID)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/inventory/products/{id}/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	productID := c.Params("id")
	available, err := h.queries.Availability(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.AvailabilityResponse{ProductID: productID, Available: available})
}

// CurrentPrice godoc
// @Summary      Precio vigente (oráculo FEFO)
// @Description  Precio del lote más próximo a vencer con unidades; cambia solo cuando ese lote se agota o sale del pool.
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del producto (UUID)"
// @Success      200  {object}  dto.PriceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/price [get]
func (h *InventoryHandler) CurrentPrice(c *fiber.Ctx) error {
	productID := c.Params("id")
	price, err := h.oracle.CurrentPrice(c.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveBatch) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_ACTIVE_BATCH", Message: "sin lote activo para fijar precio"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.PriceResponse{ProductID: productID, UnitPrice: price})
}

// MovementsByBatch godoc
// @Summary      Movimientos de un lote
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID del lote (UUID)"
// @Param        limit   query  int     false  "Máximo de resultados (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/batches/{id}/movements [get]
func (h *InventoryHandler) MovementsByBatch(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.queries.ListMovementsByBatch(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toMovementResponses(movements))
}

// MovementsByProduct godoc
// @Summary      Movimientos de todos los lotes de un producto
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID del producto (UUID)"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        limit   query  int     false  "Máximo de resultados (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) MovementsByProduct(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC3339)"})
	}

	movements, err := h.queries.ListMovementsByProduct(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toMovementResponses(movements))
}

// Sweep godoc
// @Summary      Correr el barrido de cuarentena
// @Description  Retira del pool asignable todo lote activo ya vencido. Idempotente: una segunda corrida inmediata no encuentra nada. El scheduler externo puede fijar as_of; sin cuerpo se barre al instante actual.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SweepRequest  false  "as_of opcional (RFC3339)"
// @Success      200   {object}  dto.SweepResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/sweep [post]
func (h *InventoryHandler) Sweep(c *fiber.Ctx) error {
	var in dto.SweepRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "cuerpo inválido: " + err.Error()})
		}
	}
	asOf := time.Now()
	if in.AsOf != nil {
		asOf = *in.AsOf
	}
	ids, err := h.sweeper.Sweep(c.Context(), asOf)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.SweepResponse{Quarantined: ids, SweptAt: asOf})
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.ToMovementResponse(m))
	}
	return out
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
