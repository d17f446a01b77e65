package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Codigo      string          `json:"codigo"      validate:"required,min=1,max=50"`
	Nombre      string          `json:"nombre"      validate:"required,min=2,max=200"`
	Descripcion *string         `json:"descripcion" validate:"omitempty,max=500"`
	Categoria   string          `json:"categoria"   validate:"required"`
	Precio      decimal.Decimal `json:"precio"      validate:"required"`
	Stock       int             `json:"stock"       validate:"min=0"`
	StockMinimo int             `json:"stockMinimo" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Codigo      string          `json:"codigo"      validate:"required,min=1,max=50"`
	Nombre      string          `json:"nombre"      validate:"required,min=2,max=200"`
	Descripcion *string         `json:"descripcion" validate:"omitempty,max=500"`
	Categoria   string          `json:"categoria"   validate:"required"`
	Precio      decimal.Decimal `json:"precio"      validate:"required"`
	StockMinimo int             `json:"stockMinimo" validate:"min=0"`
}

// AjustarStockRequest applies a manual correction (merma, recuento).
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	StockMinimo int             `json:"stockMinimo"`
	Activo      bool            `json:"activo"`
	BajoStock   bool            `json:"bajoStock"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int                `json:"total"`
}
