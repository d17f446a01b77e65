package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"productoId" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"   validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID string          `json:"productoId"`
	Codigo     string          `json:"codigo"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID                  string              `json:"id"`
	CajaID              string              `json:"cajaId"`
	Items               []ItemVentaResponse `json:"items"`
	Total               decimal.Decimal     `json:"total"`
	Fecha               string              `json:"fecha"`
	Usuario             string              `json:"usuario"`
	Estado              string              `json:"estado"`
	MovimientoPendiente bool                `json:"movimientoPendiente,omitempty"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int             `json:"total"`
}
