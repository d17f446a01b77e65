package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is an expense charged against the open caja. Each gasto has a
// matching "gasto" movement in the caja ledger.
type Gasto struct {
	ID          uuid.UUID       `json:"id"`
	CajaID      uuid.UUID       `json:"cajaId"`
	Descripcion string          `json:"descripcion"`
	Monto       decimal.Decimal `json:"monto"`
	Fecha       time.Time       `json:"fecha"`
	Usuario     string          `json:"usuario"`
}
