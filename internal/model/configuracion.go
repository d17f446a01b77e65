package model

import "time"

// Empresa holds the business identity shown on tickets and reports.
type Empresa struct {
	Nombre    string    `json:"nombre"`
	Direccion string    `json:"direccion"`
	Telefono  string    `json:"telefono"`
	Email     string    `json:"email"`
	Moneda    string    `json:"moneda"` // ISO 4217, e.g. "BOB"
	UpdatedAt time.Time `json:"updatedAt"`
}
