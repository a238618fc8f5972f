package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearEmpleadoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
	Email  string `json:"correo" validate:"required,email"`
	Rol    string `json:"rol"    validate:"required"`
}

type ActualizarRolRequest struct {
	Rol string `json:"rol" validate:"required"`
}

// PermisosExtraRequest assigns the temporary module overlay. Role changes go
// through ActualizarRolRequest — extras and role are independent.
type PermisosExtraRequest struct {
	Modulos []string `json:"modulos" validate:"required,min=1,dive,oneof=inventario pos caja reportes"`
	Nota    string   `json:"nota"    validate:"omitempty,max=250"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EmpleadoResponse struct {
	ID            string   `json:"id"`
	Nombre        string   `json:"nombre"`
	Email         string   `json:"correo"`
	Rol           string   `json:"rol"`
	PrimerAcceso  bool     `json:"primerAcceso"`
	ModulosExtra  []string `json:"modulosExtra"`
	Activo        bool     `json:"activo"`
}

// CrearEmpleadoResponse echoes the generated temporary password once; it is
// never retrievable again (the employee also receives it by email).
type CrearEmpleadoResponse struct {
	Empleado         EmpleadoResponse `json:"empleado"`
	PasswordTemporal string           `json:"passwordTemporal"`
}
