package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/farmacia-pos/internal/domain/event"
	"github.com/tu-usuario/farmacia-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor: o se
// aplican todos los decrementos y movimientos de una llamada, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Clock reloj inyectable; el motor nunca llama time.Now() directo para que
// los tests y el sweeper puedan fijar la fecha de corte.
type Clock interface {
	Now() time.Time
}

// SystemClock implementación de producción.
type SystemClock struct{}

// Now devuelve la hora del sistema.
func (SystemClock) Now() time.Time { return time.Now() }

// Publisher puerto de eventos salientes. Fire-and-forget: el motor no espera
// confirmación y un fallo del consumidor nunca afecta al ledger.
type Publisher interface {
	Publish(ctx context.Context, evt event.Event)
}
