package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario stores system users with role-based access.
// Rol: "admin" | "vendedor"
type Usuario struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Nombre       string    `json:"nombre"`
	Rol          string    `json:"rol"`
	PasswordHash string    `json:"passwordHash"`
	Activo       bool      `json:"activo"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}
