package dto

type EmpresaRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2,max=200"`
	Direccion string `json:"direccion" validate:"omitempty,max=300"`
	Telefono  string `json:"telefono"  validate:"omitempty,max=50"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Moneda    string `json:"moneda"    validate:"required,len=3"`
}

type EmpresaResponse struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email"`
	Moneda    string `json:"moneda"`
}
