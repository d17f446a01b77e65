package dto

import "github.com/shopspring/decimal"

type RegistrarGastoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=3,max=300"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
}

type GastoResponse struct {
	ID          string          `json:"id"`
	CajaID      string          `json:"cajaId"`
	Descripcion string          `json:"descripcion"`
	Monto       decimal.Decimal `json:"monto"`
	Fecha       string          `json:"fecha"`
	Usuario     string          `json:"usuario"`
}

type GastoListResponse struct {
	Data  []GastoResponse `json:"data"`
	Total int             `json:"total"`
}
