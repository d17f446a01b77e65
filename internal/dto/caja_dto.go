package dto

import "github.com/shopspring/decimal"

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"montoInicial" validate:"required"`
}

type RegistrarAbonoRequest struct {
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

type MovimientoResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Fecha        string          `json:"fecha"`
	Usuario      string          `json:"usuario"`
	Descripcion  string          `json:"descripcion"`
	ReferenciaID *string         `json:"referenciaId,omitempty"`
}

type CajaResponse struct {
	ID              string               `json:"id"`
	Estado          string               `json:"estado"`
	MontoInicial    decimal.Decimal      `json:"montoInicial"`
	TotalVentas     decimal.Decimal      `json:"totalVentas"`
	TotalGastos     decimal.Decimal      `json:"totalGastos"`
	TotalAbonos     decimal.Decimal      `json:"totalAbonos"`
	TotalGeneral    *decimal.Decimal     `json:"totalGeneral,omitempty"`
	SaldoActual     decimal.Decimal      `json:"saldoActual"`
	FechaApertura   string               `json:"fechaApertura"`
	FechaCierre     *string              `json:"fechaCierre,omitempty"`
	UsuarioApertura string               `json:"usuarioApertura"`
	UsuarioCierre   *string              `json:"usuarioCierre,omitempty"`
	Movimientos     []MovimientoResponse `json:"movimientos"`
}

type CajaListResponse struct {
	Data  []CajaResponse `json:"data"`
	Total int            `json:"total"`
}
