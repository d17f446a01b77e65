package dto

import "github.com/shopspring/decimal"

// ReporteCajaResponse is the closing report of one caja. Cuadra is false
// when the stored totals do not match the replayed movement ledger.
type ReporteCajaResponse struct {
	Caja             CajaResponse    `json:"caja"`
	TotalMovimientos int             `json:"totalMovimientos"`
	VentasReplay     decimal.Decimal `json:"ventasReplay"`
	GastosReplay     decimal.Decimal `json:"gastosReplay"`
	AbonosReplay     decimal.Decimal `json:"abonosReplay"`
	Cuadra           bool            `json:"cuadra"`
}

type ResumenVentasResponse struct {
	Fecha         string          `json:"fecha"`
	TotalVentas   decimal.Decimal `json:"totalVentas"`
	CantidadVentas int            `json:"cantidadVentas"`
	Ventas        []VentaResponse `json:"ventas"`
}

type BajoStockResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int                `json:"total"`
}
