package repository

import "errors"

// Typed failures of the commit core. Services and handlers match these with
// errors.Is; none of them wraps internal store details.
var (
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrStockInsuficiente    = errors.New("stock insuficiente")
	ErrMontoInvalido        = errors.New("monto inválido")
	ErrEstadoInvalido       = errors.New("estado de caja inválido para la operación")
	ErrCajaCerrada          = errors.New("la caja está cerrada")
	ErrCajaNoEncontrada     = errors.New("caja no encontrada")
	ErrSinCajaAbierta       = errors.New("no hay una caja abierta")
	ErrVentaNoEncontrada    = errors.New("venta no encontrada")
	ErrCodigoDuplicado      = errors.New("ya existe un producto con ese código")

	// ErrConflictoTransitorio surfaces only after a bounded number of
	// compare-and-swap retries lost against concurrent writers.
	ErrConflictoTransitorio = errors.New("conflicto de escritura persistente, reintente")
)

// maxCASRetries bounds every compare-and-swap loop so no operation blocks
// indefinitely under contention.
const maxCASRetries = 5
