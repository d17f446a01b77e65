package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement tipos. Apertura/venta/abono add to the drawer, gasto subtracts,
// anulacion is the compensating entry for a cancelled sale and folds as a
// negative against totalVentas.
const (
	MovimientoApertura  = "apertura"
	MovimientoVenta     = "venta"
	MovimientoGasto     = "gasto"
	MovimientoAbono     = "abono"
	MovimientoAnulacion = "anulacion"
)

const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// Caja is the cash-register aggregate: lifecycle state, running totals and
// the full movement ledger live in ONE document so a single conditional
// write makes a movement and its total update visible together. At most one
// Caja is "abierta" at any time (enforced by the cajas_abierta pointer key).
type Caja struct {
	ID           uuid.UUID       `json:"id"`
	Estado       string          `json:"estado"` // abierta | cerrada
	MontoInicial decimal.Decimal `json:"montoInicial"`
	TotalVentas  decimal.Decimal `json:"totalVentas"`
	TotalGastos  decimal.Decimal `json:"totalGastos"`
	TotalAbonos  decimal.Decimal `json:"totalAbonos"`
	// TotalGeneral is computed once, at close:
	// montoInicial + totalVentas + totalAbonos - totalGastos
	TotalGeneral    *decimal.Decimal `json:"totalGeneral,omitempty"`
	FechaApertura   time.Time        `json:"fechaApertura"`
	FechaCierre     *time.Time       `json:"fechaCierre,omitempty"`
	UsuarioApertura string           `json:"usuarioApertura"`
	UsuarioCierre   *string          `json:"usuarioCierre,omitempty"`

	Movimientos []Movimiento `json:"movimientos"`
}

// Movimiento is an immutable entry in the caja ledger. Movements are only
// ever appended — cancellations add inverse entries, nothing is edited.
type Movimiento struct {
	ID          uuid.UUID       `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"` // always > 0; tipo decides the sign
	Fecha       time.Time       `json:"fecha"`
	Usuario     string          `json:"usuario"`
	Descripcion string          `json:"descripcion"`
	// ReferenciaID links venta/anulacion movements to their Venta and is
	// the idempotency key for ledger-append retries.
	ReferenciaID *uuid.UUID `json:"referenciaId,omitempty"`
}

// Totales are the running accumulators of a caja.
type Totales struct {
	Ventas decimal.Decimal
	Gastos decimal.Decimal
	Abonos decimal.Decimal
}

// TotalesDesdeMovimientos replays the ledger and returns the accumulators it
// implies. The stored totals must always equal this fold — reports verify it
// and tests enforce it.
func (c *Caja) TotalesDesdeMovimientos() Totales {
	var t Totales
	for _, m := range c.Movimientos {
		switch m.Tipo {
		case MovimientoVenta:
			t.Ventas = t.Ventas.Add(m.Monto)
		case MovimientoAnulacion:
			t.Ventas = t.Ventas.Sub(m.Monto)
		case MovimientoGasto:
			t.Gastos = t.Gastos.Add(m.Monto)
		case MovimientoAbono:
			t.Abonos = t.Abonos.Add(m.Monto)
		}
	}
	return t
}

// SaldoActual is the drawer balance implied by the current totals.
func (c *Caja) SaldoActual() decimal.Decimal {
	return c.MontoInicial.Add(c.TotalVentas).Add(c.TotalAbonos).Sub(c.TotalGastos)
}

// TieneMovimientoPara reports whether a movement of the given tipo already
// references ventaID. Used to make ledger appends idempotent per sale.
func (c *Caja) TieneMovimientoPara(tipo string, ventaID uuid.UUID) bool {
	for _, m := range c.Movimientos {
		if m.Tipo == tipo && m.ReferenciaID != nil && *m.ReferenciaID == ventaID {
			return true
		}
	}
	return false
}
