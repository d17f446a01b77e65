package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Venta is immutable after creation. Line items snapshot the product's name
// and price at sale time, so later catalog edits never alter history.
// Cancellation is a compensating pair (stock restore + anulacion movement),
// never an in-place edit of the venta beyond its estado.
type Venta struct {
	ID      uuid.UUID       `json:"id"`
	CajaID  uuid.UUID       `json:"cajaId"`
	Items   []VentaItem     `json:"items"`
	Total   decimal.Decimal `json:"total"`
	Fecha   time.Time       `json:"fecha"`
	Usuario string          `json:"usuario"`
	Estado  string          `json:"estado"` // completada | anulada
	// MovimientoPendiente marks a venta whose ledger movement did not land
	// on first attempt. Stock is already decremented; the reconciliation
	// cron retries the idempotent append until the flag clears.
	MovimientoPendiente bool `json:"movimientoPendiente,omitempty"`
}

// VentaItem references its Producto by id only (lookup, not ownership).
type VentaItem struct {
	ProductoID uuid.UUID       `json:"productoId"`
	Codigo     string          `json:"codigo"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"` // unit price at sale time
	Cantidad   int             `json:"cantidad"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}
