// Package events implementa el puerto de publicación de eventos de dominio.
// Por ahora el único consumidor es el log estructurado; si mañana aparece un
// broker, este paquete es el único lugar que cambia.
package events

import (
	"context"

	"github.com/tu-usuario/farmacia-pos/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	"github.com/tu-usuario/farmacia-pos/pkg/logger"
)

var _ inventory.Publisher = (*LogPublisher)(nil)

// LogPublisher publica eventos como entradas de log estructurado.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish registra el evento. Fire-and-forget: nunca falla ni bloquea al caller.
func (p *LogPublisher) Publish(_ context.Context, evt event.Event) {
	e := p.log.Info().
		Str("event", evt.EventType()).
		Time("occurred_at", evt.OccurredAt())

	switch v := evt.(type) {
	case event.BatchDepleted:
		e = e.Str("batch_id", v.BatchID).Str("product_id", v.ProductID)
	case event.BatchQuarantined:
		e = e.Str("batch_id", v.BatchID).Str("product_id", v.ProductID).Time("expired_on", v.ExpiredOn)
	case event.SaleCommitted:
		e = e.Str("transaction_id", v.TransactionID).Str("total", v.Total.String())
	}
	e.Msg("evento de dominio")
}
