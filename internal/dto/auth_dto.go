package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type CrearUsuarioRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Nombre   string `json:"nombre"   validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"rol"      validate:"required,oneof=admin vendedor"`
}

type ActualizarUsuarioRequest struct {
	Nombre   string `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Rol      string `json:"rol"      validate:"omitempty,oneof=admin vendedor"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Activo   *bool  `json:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Nombre    string  `json:"nombre"`
	Rol       string  `json:"rol"`
	Activo    bool    `json:"activo"`
	LastLogin *string `json:"lastLogin,omitempty"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}
