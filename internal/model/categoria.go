package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria classifies products.
type Categoria struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
