package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"correo"   validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RegisterRequest struct {
	NombreNegocio string `json:"nombreNegocio" validate:"required,min=2,max=120"`
	Nombre        string `json:"nombre"        validate:"required,min=2,max=100"`
	Email         string `json:"correo"        validate:"required,email"`
	Password      string `json:"password"      validate:"required,min=8"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CambiarPasswordRequest struct {
	NuevaPassword string `json:"nuevaPassword" validate:"required,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType"`
	ExpiresIn    int         `json:"expiresIn"` // seconds
	PrimerAcceso bool        `json:"primerAcceso"`
	Session      SessionInfo `json:"session"`
}
