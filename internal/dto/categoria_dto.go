package dto

type CategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
}

type CategoriaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}
