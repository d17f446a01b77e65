package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item. Stock is mutated exclusively through the
// conditional-decrement path of the repository; a product referenced by a
// historical venta is never hard-deleted, only deactivated.
type Producto struct {
	ID          uuid.UUID       `json:"id"`
	Codigo      string          `json:"codigo"` // código de barras
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	// StockMinimo is the reorder threshold; at or below it the product
	// shows up in the low-stock alert report.
	StockMinimo int       `json:"stockMinimo"`
	Activo      bool      `json:"activo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Restauraciones lists the venta ids whose compensation already gave this
	// product's stock back. The set rides inside the product document so the
	// membership check and the increment become visible in the same
	// conditional write; there is no window where one exists without the
	// other.
	Restauraciones []uuid.UUID `json:"restauraciones,omitempty"`
}

// BajoStock reports whether the product is at or below its reorder threshold.
func (p *Producto) BajoStock() bool { return p.Stock <= p.StockMinimo }

// RestauracionAplicada reports whether ventaID's stock was already restored.
func (p *Producto) RestauracionAplicada(ventaID uuid.UUID) bool {
	for _, id := range p.Restauraciones {
		if id == ventaID {
			return true
		}
	}
	return false
}
